package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RPCHandler dispatches a JSON-RPC method for a tenant.
type RPCHandler interface {
	Handle(ctx context.Context, tenantID, method string, params json.RawMessage) (any, error)
}

// codedError is implemented by errors that carry a client-facing code.
type codedError interface {
	error
	CodeValue() string
	MessageValue() string
	RecoveryHintValue() string
}

// Application error codes that map onto standard JSON-RPC codes.
const (
	codeMethodNotFound = "METHOD_NOT_FOUND"
	codeInvalidParams  = "INVALID_PARAMS"
)

// ErrApplication is the JSON-RPC code for domain errors; data.code says which.
const ErrApplication = -32000

// Server wires HTTP handlers.
type Server struct {
	handler RPCHandler
	logger  *slog.Logger
}

// Options configures the HTTP router.
type Options struct {
	// Auth guards /rpc. Nil leaves it open.
	Auth func(http.Handler) http.Handler
	// MCP, when set, is mounted at /mcp. It authenticates on its own.
	MCP http.Handler
	// Logger records errors that are hidden from clients. Nil discards them.
	Logger *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler RPCHandler, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{handler: handler, logger: logger}

	r.Get("/health", srv.handleHealth)
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		r.Post("/rpc", srv.handleRPC)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		code := ErrInvalidReq
		if errors.Is(err, errParse) {
			code = ErrParseCode
		}
		WriteError(w, nil, code, err.Error(), nil)
		return
	}

	tenantID, ok := TenantFromContext(r.Context())
	if !ok || tenantID == "" {
		tenantID = DefaultTenant
	}

	result, err := s.handler.Handle(r.Context(), tenantID, req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(w, r, tenantID, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, r *http.Request, tenantID string, req Request, err error) {
	id := req.ID
	var coded codedError
	if !errors.As(err, &coded) {
		s.logger.ErrorContext(r.Context(), "rpc call failed",
			"method", req.Method, "tenant_id", tenantID, "error", err)
		WriteError(w, id, ErrInternal, "internal error", nil)
		return
	}

	code := ErrApplication
	switch coded.CodeValue() {
	case codeMethodNotFound:
		code = ErrMethodNotFound
	case codeInvalidParams:
		code = ErrInvalidParams
	}
	WriteError(w, id, code, coded.MessageValue(), ErrorData{
		Code:         coded.CodeValue(),
		RecoveryHint: coded.RecoveryHintValue(),
	})
}
