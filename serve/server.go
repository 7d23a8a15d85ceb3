package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/devflow/guard"
	"github.com/zero-day-ai/devflow/registry"
	"github.com/zero-day-ai/devflow/tool"
	"github.com/zero-day-ai/devflow/toolerr"
)

const instrumentationName = "github.com/zero-day-ai/devflow/serve"

// State is the dispatch loop's position in the request cycle.
type State int32

const (
	// StateIdle waits for the next request.
	StateIdle State = iota
	// StateDispatching runs a request.
	StateDispatching
	// StateResponding writes the reply.
	StateResponding
	// StateClosed is terminal; the transport reached end of stream.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateResponding:
		return "responding"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrClosed is returned by Serve once the server has shut down.
var ErrClosed = errors.New("serve: server closed")

// Request is one tool invocation.
type Request struct {
	// ID correlates the request in logs and traces. A UUID is assigned
	// when empty.
	ID string

	// Tool is the name of the tool to call.
	Tool string

	// Arguments are the caller-supplied named arguments.
	Arguments map[string]any
}

// MessageKind says what a Message asks for.
type MessageKind int

const (
	// KindList asks for the tool descriptors.
	KindList MessageKind = iota + 1
	// KindCall asks to invoke a tool.
	KindCall
)

// Message is a request delivered by a Transport.
type Message struct {
	Kind MessageKind

	// Call is set for KindCall.
	Call Request

	// Token is opaque transport state used to correlate the Reply.
	Token any
}

// Reply answers a Message. Exactly one of Tools, Result or Err is meaningful.
type Reply struct {
	Message Message
	Tools   []tool.Descriptor
	Result  *tool.Result
	Err     error
}

// Transport carries messages between a client and the Server.
// Receive returns io.EOF when the client closes the stream.
type Transport interface {
	Receive(ctx context.Context) (Message, error)
	Send(ctx context.Context, reply Reply) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGuards installs call guards evaluated after a tool is resolved and
// before its handler runs.
func WithGuards(guards *guard.Set) Option {
	return func(s *Server) {
		s.guards = guards
	}
}

// WithTracerProvider sets where tool-call spans go. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProvider = tp
	}
}

// WithMeterProvider sets where tool-call metrics go. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Server) {
		s.meterProvider = mp
	}
}

// Server dispatches tool requests sequentially.
type Server struct {
	registry       *registry.Registry
	guards         *guard.Set
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	tracer   trace.Tracer
	calls    metric.Int64Counter
	duration metric.Float64Histogram

	state atomic.Int32
}

// New creates a Server over reg.
func New(reg *registry.Registry, opts ...Option) *Server {
	s := &Server{registry: reg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "serve")
	if s.tracerProvider == nil {
		s.tracerProvider = otel.GetTracerProvider()
	}
	if s.meterProvider == nil {
		s.meterProvider = otel.GetMeterProvider()
	}

	s.tracer = s.tracerProvider.Tracer(instrumentationName)
	meter := s.meterProvider.Meter(instrumentationName)

	var err error
	s.calls, err = meter.Int64Counter("devflow.tool.calls",
		metric.WithDescription("Tool calls by tool and outcome"))
	if err != nil {
		s.logger.Warn("tool call counter unavailable", "error", err)
	}
	s.duration, err = meter.Float64Histogram("devflow.tool.duration",
		metric.WithDescription("Tool call duration"),
		metric.WithUnit("ms"))
	if err != nil {
		s.logger.Warn("tool duration histogram unavailable", "error", err)
	}
	return s
}

// State reports where the dispatch loop is.
func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
}

// ListTools returns the descriptors of every registered tool.
func (s *Server) ListTools() []tool.Descriptor {
	return s.registry.List()
}

// Serve reads messages from t until end of stream, dispatching each one to
// completion before reading the next. It returns nil when the client closes
// the stream, and the context error if ctx is cancelled while idle.
//
// Handlers never see ctx cancellation: a request that has been read always
// runs to completion and gets its reply.
func (s *Server) Serve(ctx context.Context, t Transport) error {
	if s.State() == StateClosed {
		return ErrClosed
	}
	defer s.setState(StateClosed)

	s.logger.Info("serving", "count", s.registry.Len(), "tools", s.registry.Names())
	for {
		s.setState(StateIdle)
		msg, err := t.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("client closed the stream")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("receive: %w", err)
		}

		s.setState(StateDispatching)
		reply := s.dispatch(ctx, msg)

		s.setState(StateResponding)
		if err := t.Send(context.WithoutCancel(ctx), reply); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, msg Message) Reply {
	reply := Reply{Message: msg}
	switch msg.Kind {
	case KindList:
		reply.Tools = s.ListTools()
	case KindCall:
		reply.Result, reply.Err = s.CallTool(ctx, msg.Call)
	default:
		reply.Err = fmt.Errorf("unsupported message kind %d", msg.Kind)
	}
	return reply
}

// CallTool resolves req.Tool, applies any guard and runs the handler. An
// unknown tool, rejected arguments or a handler error is returned as an
// error; the handler is never invoked for an unknown tool.
func (s *Server) CallTool(ctx context.Context, req Request) (*tool.Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	logger := s.logger.With("tool", req.Tool, "request_id", req.ID)

	ctx, span := s.tracer.Start(ctx, "tool.call", trace.WithAttributes(
		attribute.String("tool.name", req.Tool),
		attribute.String("request.id", req.ID),
	))
	defer span.End()

	start := time.Now()
	res, err := s.call(ctx, req)
	elapsed := time.Since(start)

	outcome := "ok"
	switch {
	case errors.Is(err, toolerr.ErrToolNotFound):
		outcome = "unknown_tool"
	case err != nil && toolerr.IsValidation(err):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	case res.IsError:
		outcome = "tool_error"
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("tool call failed", "outcome", outcome, "error", err, "duration", elapsed)
	} else {
		span.SetAttributes(attribute.Bool("tool.is_error", res.IsError))
		span.SetStatus(codes.Ok, "")
		logger.Info("tool call finished", "outcome", outcome, "duration", elapsed)
	}

	attrs := metric.WithAttributes(
		attribute.String("tool.name", req.Tool),
		attribute.String("outcome", outcome),
	)
	if s.calls != nil {
		s.calls.Add(ctx, 1, attrs)
	}
	if s.duration != nil {
		s.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	}
	return res, err
}

func (s *Server) call(ctx context.Context, req Request) (*tool.Result, error) {
	t, err := s.registry.Resolve(req.Tool)
	if err != nil {
		return nil, err
	}
	if err := s.guards.Check(req.Tool, req.Arguments); err != nil {
		return nil, err
	}
	return s.invoke(context.WithoutCancel(ctx), t, req.Arguments)
}

func (s *Server) invoke(ctx context.Context, t tool.Tool, args map[string]any) (res *tool.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tool handler panicked", "tool", t.Name(), "panic", r, "stack", string(debug.Stack()))
			res = nil
			err = toolerr.New(t.Name(), "call", toolerr.ErrCodeExecutionFailed,
				fmt.Sprintf("handler panicked: %v", r))
		}
	}()

	res, err = t.Call(ctx, args)
	if err == nil && res == nil {
		res = tool.Text("")
	}
	return res, err
}
