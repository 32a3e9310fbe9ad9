// Package toolserver exposes the query tools over JSON-RPC 2.0 on a pair of
// byte streams, one message per line.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.trai.ch/notekeep/internal/adapters/tools"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/zerr"
)

// Method names.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
)

const (
	// ProtocolVersion is announced when the client does not request one.
	ProtocolVersion = "2024-11-05"
	// ServerName identifies the server to clients.
	ServerName = "notekeep"
)

// Toolset is the set of tools the server exposes.
type Toolset interface {
	Definitions() []tools.Definition
	Call(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

// Server answers tool requests.
type Server struct {
	tools   Toolset
	logger  ports.Logger
	version string
}

// New creates a new Server.
func New(toolset Toolset, logger ports.Logger, version string) *Server {
	return &Server{
		tools:   toolset,
		logger:  logger,
		version: version,
	}
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type listResult struct {
	Tools []tools.Definition `json:"tools"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content []content `json:"content"`
	IsError bool      `json:"isError"`
}

// Serve answers requests read from r on w until r is exhausted or ctx is
// cancelled. Reaching the end of r is not an error.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	conn := jsonrpc2.NewConn(newLineStream(stdio{Reader: r, Writer: w}, s.logger))
	conn.Go(ctx, jsonrpc2.ReplyHandler(s.Handle))

	select {
	case <-ctx.Done():
		_ = conn.Close()
		return nil
	case <-conn.Done():
	}

	if err := conn.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		return zerr.Wrap(err, "tool server connection failed")
	}
	return nil
}

// Handle dispatches a single request.
func (s *Server) Handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Debug("tool server request: " + req.Method())

	switch req.Method() {
	case MethodInitialize:
		var params initializeParams
		if err := decodeParams(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		version := params.ProtocolVersion
		if version == "" {
			version = ProtocolVersion
		}
		return reply(ctx, initializeResult{
			ProtocolVersion: version,
			Capabilities: map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
			ServerInfo: serverInfo{Name: ServerName, Version: s.version},
		}, nil)

	case MethodInitialized:
		return reply(ctx, nil, nil)

	case MethodPing:
		return reply(ctx, struct{}{}, nil)

	case MethodToolsList:
		return reply(ctx, listResult{Tools: s.tools.Definitions()}, nil)

	case MethodToolsCall:
		var params callParams
		if err := decodeParams(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}
		res, err := s.tools.Call(ctx, params.Name, params.Arguments)
		if err != nil {
			return reply(ctx, nil, s.toWireError(err))
		}
		return reply(ctx, callResult{
			Content: []content{{Type: "text", Text: res.Text}},
			IsError: res.IsError,
		}, nil)

	default:
		if _, ok := req.(*jsonrpc2.Notification); ok {
			return reply(ctx, nil, nil)
		}
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func decodeParams(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return jsonrpc2.Errorf(jsonrpc2.InvalidParams, "invalid params: %v", err)
	}
	return nil
}

func (s *Server) toWireError(err error) error {
	msg := strings.ReplaceAll(err.Error(), "\n", ": ")
	switch {
	case errors.Is(err, domain.ErrUnknownTool):
		return jsonrpc2.NewError(jsonrpc2.InvalidParams, msg)
	case errors.Is(err, domain.ErrInvalidToolArguments):
		return jsonrpc2.NewError(jsonrpc2.InvalidParams, msg)
	default:
		s.logger.Error(err)
		return jsonrpc2.NewError(jsonrpc2.InternalError, msg)
	}
}
