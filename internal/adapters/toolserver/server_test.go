package toolserver_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/notekeep/internal/adapters/tools"
	"go.trai.ch/notekeep/internal/adapters/toolserver"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type client struct {
	t    *testing.T
	in   *io.PipeWriter
	out  *bufio.Scanner
	done chan error
}

func startServer(t *testing.T, toolset toolserver.Toolset, log *mocks.MockLogger) *client {
	t.Helper()

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	srv := toolserver.New(toolset, log, "1.2.3")

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, reqR, respW)
		_ = respW.Close()
	}()

	t.Cleanup(func() {
		cancel()
		_ = reqW.Close()
	})

	return &client{t: t, in: reqW, out: bufio.NewScanner(respR), done: done}
}

func (c *client) send(line string) {
	c.t.Helper()
	_, err := io.WriteString(c.in, line+"\n")
	require.NoError(c.t, err)
}

func (c *client) receive() map[string]any {
	c.t.Helper()
	require.True(c.t, c.out.Scan(), "expected a response")
	var msg map[string]any
	require.NoError(c.t, json.Unmarshal(c.out.Bytes(), &msg))
	return msg
}

func newToolbox(t *testing.T) (*tools.Toolbox, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)

	cat := domain.NewCatalog(time.Now())
	cat.Meetings["m1"] = domain.Meeting{ID: "m1", Title: "Standup", Date: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Type: "meeting"}

	catalog := mocks.NewMockCatalogProvider(ctrl)
	catalog.EXPECT().RefreshIfStale(gomock.Any()).Return(cat, nil).AnyTimes()

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	return tools.New(catalog, nil, time.UTC, "/cache.json"), log
}

func TestServe_Handshake(t *testing.T) {
	box, log := newToolbox(t)
	c := startServer(t, box, log)

	c.send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{}}}`)
	resp := c.receive()
	assert.EqualValues(t, 1, resp["id"])
	result := resp["result"].(map[string]any)
	assert.Equal(t, "2025-03-26", result["protocolVersion"])
	assert.Equal(t, map[string]any{"name": "notekeep", "version": "1.2.3"}, result["serverInfo"])
	assert.Contains(t, result["capabilities"], "tools")

	c.send(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	c.send(``)
	c.send(`{"jsonrpc":"2.0","id":"p","method":"ping"}`)
	resp = c.receive()
	assert.Equal(t, "p", resp["id"])
	assert.Equal(t, map[string]any{}, resp["result"])
}

func TestServe_DefaultProtocolVersion(t *testing.T) {
	box, log := newToolbox(t)
	c := startServer(t, box, log)

	c.send(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	result := c.receive()["result"].(map[string]any)
	assert.Equal(t, toolserver.ProtocolVersion, result["protocolVersion"])
}

func TestServe_ToolsListAndCall(t *testing.T) {
	box, log := newToolbox(t)
	c := startServer(t, box, log)

	c.send(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	list := c.receive()["result"].(map[string]any)["tools"].([]any)
	assert.Len(t, list, 5)
	first := list[0].(map[string]any)
	assert.Equal(t, tools.SearchMeetings, first["name"])
	assert.Equal(t, true, first["annotations"].(map[string]any)["readOnlyHint"])

	c.send(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_meeting","arguments":{"meeting_id":"m1"}}}`)
	result := c.receive()["result"].(map[string]any)
	assert.Equal(t, false, result["isError"])
	items := result["content"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "text", item["type"])
	assert.Contains(t, item["text"], "# Meeting Details: Standup")
}

func TestServe_ToolErrorIsResult(t *testing.T) {
	box, log := newToolbox(t)
	c := startServer(t, box, log)

	c.send(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"analyze_patterns","arguments":{"pattern_type":"moods"}}}`)
	result := c.receive()["result"].(map[string]any)
	assert.Equal(t, true, result["isError"])
}

func TestServe_ProtocolErrors(t *testing.T) {
	box, log := newToolbox(t)
	log.EXPECT().Warn(gomock.Any()).Times(1)
	c := startServer(t, box, log)

	c.send(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope"}}`)
	resp := c.receive()
	errObj := resp["error"].(map[string]any)
	assert.EqualValues(t, -32602, errObj["code"])
	assert.Contains(t, errObj["message"], `no tool named "nope"`)

	c.send(`{"jsonrpc":"2.0","id":5,"method":"resources/list"}`)
	errObj = c.receive()["error"].(map[string]any)
	assert.EqualValues(t, -32601, errObj["code"])

	c.send(`not json at all`)
	c.send(`{"jsonrpc":"2.0","id":6,"method":"tools/call","params":[1]}`)
	resp = c.receive()
	assert.EqualValues(t, 6, resp["id"])
	assert.EqualValues(t, -32602, resp["error"].(map[string]any)["code"])
}

func TestServe_ReturnsAtEndOfInput(t *testing.T) {
	box, log := newToolbox(t)
	c := startServer(t, box, log)

	require.NoError(t, c.in.Close())
	select {
	case err := <-c.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop at end of input")
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	box, log := newToolbox(t)
	reqR, _ := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- toolserver.New(box, log, "dev").Serve(ctx, reqR, io.Discard)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop on cancel")
	}
}
