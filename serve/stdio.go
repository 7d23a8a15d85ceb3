package serve

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/zero-day-ai/devflow/tool"
	"github.com/zero-day-ai/devflow/toolerr"
)

// ProtocolVersion is the MCP revision advertised when the client does not ask for one.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ServerInfo identifies the server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type listResult struct {
	Tools []tool.Descriptor `json:"tools"`
}

type errorData struct {
	Code  string   `json:"code,omitempty"`
	Tool  string   `json:"tool,omitempty"`
	Hints []string `json:"hints,omitempty"`
}

var nullID = json.RawMessage("null")

type line struct {
	data []byte
	err  error
}

// StdioOption configures a StdioTransport.
type StdioOption func(*StdioTransport)

// WithStdioLogger sets the transport's logger. Defaults to slog.Default().
func WithStdioLogger(logger *slog.Logger) StdioOption {
	return func(t *StdioTransport) {
		t.logger = logger
	}
}

// StdioTransport speaks newline-delimited JSON-RPC 2.0. It answers the
// protocol housekeeping (initialize, ping, notifications, malformed input)
// itself and hands tools/list and tools/call to the Server.
type StdioTransport struct {
	info   ServerInfo
	logger *slog.Logger
	in     *bufio.Reader
	out    io.Writer

	writeMu   sync.Mutex
	startOnce sync.Once
	stopOnce  sync.Once
	lines     chan line
	done      chan struct{}
	readErr   error
}

// NewStdioTransport reads requests from r and writes responses to w.
func NewStdioTransport(r io.Reader, w io.Writer, info ServerInfo, opts ...StdioOption) *StdioTransport {
	t := &StdioTransport{
		info:  info,
		in:    bufio.NewReader(r),
		out:   w,
		lines: make(chan line),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	t.logger = t.logger.With("component", "stdio")
	return t
}

// readLoop feeds lines to Receive so a blocked read never holds up ctx
// cancellation. It exits once the transport is stopped, or after the read
// in flight at that moment returns.
func (t *StdioTransport) readLoop() {
	for {
		data, err := t.in.ReadBytes('\n')
		if len(data) > 0 && !t.deliver(line{data: data}) {
			return
		}
		if err != nil {
			t.deliver(line{err: err})
			return
		}
	}
}

func (t *StdioTransport) deliver(l line) bool {
	select {
	case t.lines <- l:
		return true
	case <-t.done:
		return false
	}
}

// Receive returns the next tools/list or tools/call request. Cancelling ctx
// stops the transport: later calls return the same context error.
func (t *StdioTransport) Receive(ctx context.Context) (Message, error) {
	t.startOnce.Do(func() { go t.readLoop() })

	for {
		if t.readErr != nil {
			return Message{}, t.readErr
		}

		var l line
		select {
		case <-ctx.Done():
			t.readErr = ctx.Err()
			t.stopOnce.Do(func() { close(t.done) })
			return Message{}, t.readErr
		case l = <-t.lines:
		}
		if l.err != nil {
			t.readErr = l.err
			continue
		}

		msg, ok := t.handleLine(ctx, l.data)
		if ok {
			return msg, nil
		}
	}
}

// handleLine answers housekeeping requests directly and reports ok for
// requests the Server must handle.
func (t *StdioTransport) handleLine(ctx context.Context, data []byte) (Message, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Message{}, false
	}

	var req rpcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		t.logger.Warn("malformed request", "error", err)
		t.writeError(ctx, nullID, CodeParseError, "parse error: "+err.Error(), nil)
		return Message{}, false
	}

	if len(req.ID) == 0 {
		t.logger.Debug("notification", "method", req.Method)
		return Message{}, false
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		t.writeError(ctx, req.ID, CodeInvalidRequest, "invalid request", nil)
		return Message{}, false
	}

	switch req.Method {
	case "initialize":
		var p initializeParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				t.writeError(ctx, req.ID, CodeInvalidParams, "invalid params: "+err.Error(), nil)
				return Message{}, false
			}
		}
		version := p.ProtocolVersion
		if version == "" {
			version = ProtocolVersion
		}
		t.logger.Info("client initialized", "protocol_version", version)
		t.writeResult(ctx, req.ID, initializeResult{
			ProtocolVersion: version,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      t.info,
		})
		return Message{}, false

	case "ping":
		t.writeResult(ctx, req.ID, struct{}{})
		return Message{}, false

	case "tools/list":
		return Message{Kind: KindList, Token: req.ID}, true

	case "tools/call":
		var p callParams
		if err := json.Unmarshal(req.Params, &p); err != nil || p.Name == "" {
			msg := "invalid params: tool name is required"
			if err != nil {
				msg = "invalid params: " + err.Error()
			}
			t.writeError(ctx, req.ID, CodeInvalidParams, msg, nil)
			return Message{}, false
		}
		if p.Arguments == nil {
			p.Arguments = map[string]any{}
		}
		return Message{
			Kind:  KindCall,
			Call:  Request{Tool: p.Name, Arguments: p.Arguments},
			Token: req.ID,
		}, true

	default:
		t.writeError(ctx, req.ID, CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method), nil)
		return Message{}, false
	}
}

// Send writes the response for reply.Message.
func (t *StdioTransport) Send(ctx context.Context, reply Reply) error {
	id, _ := reply.Message.Token.(json.RawMessage)
	if len(id) == 0 {
		id = nullID
	}

	if reply.Err != nil {
		code := CodeInternalError
		if toolerr.IsValidation(reply.Err) {
			code = CodeInvalidParams
		}
		return t.writeError(ctx, id, code, reply.Err.Error(), dataFor(reply.Err))
	}

	switch reply.Message.Kind {
	case KindList:
		tools := reply.Tools
		if tools == nil {
			tools = []tool.Descriptor{}
		}
		return t.writeResult(ctx, id, listResult{Tools: tools})
	default:
		res := reply.Result
		if res == nil {
			res = tool.Text("")
		}
		return t.writeResult(ctx, id, res)
	}
}

func dataFor(err error) any {
	var te *toolerr.Error
	if !errors.As(err, &te) {
		return nil
	}
	d := errorData{Code: te.Code, Tool: te.Tool}
	for _, h := range te.Hints {
		d.Hints = append(d.Hints, h.Reason)
	}
	return d
}

func (t *StdioTransport) writeResult(ctx context.Context, id json.RawMessage, result any) error {
	return t.write(ctx, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (t *StdioTransport) writeError(ctx context.Context, id json.RawMessage, code int, message string, data any) error {
	return t.write(ctx, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message, Data: data},
	})
}

func (t *StdioTransport) write(_ context.Context, resp rpcResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	data = append(data, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.out.Write(data); err != nil {
		t.logger.Error("write response failed", "error", err)
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
