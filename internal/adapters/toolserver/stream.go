package toolserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"go.lsp.dev/jsonrpc2"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/zerr"
)

const maxMessageSize = 16 << 20

// lineStream frames JSON-RPC messages as single lines of JSON. Blank lines
// are ignored and lines that do not hold a JSON-RPC message are logged and
// skipped.
type lineStream struct {
	conn   io.ReadWriteCloser
	in     *bufio.Scanner
	logger ports.Logger
}

// newLineStream returns a jsonrpc2.Stream reading newline delimited messages.
func newLineStream(conn io.ReadWriteCloser, logger ports.Logger) jsonrpc2.Stream {
	in := bufio.NewScanner(conn)
	in.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	return &lineStream{conn: conn, in: in, logger: logger}
}

// Read implements jsonrpc2.Stream.
func (s *lineStream) Read(ctx context.Context) (jsonrpc2.Message, int64, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return nil, 0, zerr.Wrap(err, "failed to read message")
			}
			return nil, 0, io.EOF
		}

		line := bytes.TrimSpace(s.in.Bytes())
		if len(line) == 0 {
			continue
		}

		msg, err := jsonrpc2.DecodeMessage(line)
		if err != nil {
			s.logger.Warn("skipping malformed message: " + err.Error())
			continue
		}
		return msg, int64(len(line)), nil
	}
}

// Write implements jsonrpc2.Stream.
func (s *lineStream) Write(ctx context.Context, msg jsonrpc2.Message) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to encode message")
	}

	n, err := s.conn.Write(append(data, '\n'))
	if err != nil {
		return int64(n), zerr.Wrap(err, "failed to write message")
	}
	return int64(n), nil
}

// Close implements jsonrpc2.Stream.
func (s *lineStream) Close() error {
	return s.conn.Close()
}

// stdio joins a reader and a writer into an io.ReadWriteCloser.
type stdio struct {
	io.Reader
	io.Writer
}

// Close closes the reader when it supports it. The writer stays open.
func (s stdio) Close() error {
	if c, ok := s.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
