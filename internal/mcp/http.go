package mcp

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"noves-mcp-go/internal/jsonrpc"
	"noves-mcp-go/internal/session"
)

const maxBodyBytes = 4 << 20

// HTTPHandler serves the MCP endpoint. It expects session.Middleware to run
// first so that a valid Mcp-Session-Id is already in the request context.
type HTTPHandler struct {
	server         *Server
	sessions       session.Manager
	requireSession bool
	logger         zerolog.Logger
}

// NewHTTPHandler creates the handler. sessions may be nil, in which case no
// sessions are issued and none are required.
func NewHTTPHandler(server *Server, sessions session.Manager, requireSession bool, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		server:         server,
		sessions:       sessions,
		requireSession: requireSession && sessions != nil,
		logger:         logger.With().Str("component", "mcp_http").Logger(),
	}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *HTTPHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeResponse(w, r, http.StatusRequestEntityTooLarge,
				jsonrpc.NewErrorResponse(nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Request too large", nil)))
			return
		}
		h.logger.Error().Err(err).Msg("Failed to read request body")
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	msg, err := jsonrpc.ParseMessage(body)
	if err != nil {
		var rpcErr *jsonrpc.Error
		if !errors.As(err, &rpcErr) {
			rpcErr = jsonrpc.NewError(jsonrpc.InternalError, "Internal error", err.Error())
		}
		h.writeResponse(w, r, http.StatusBadRequest, jsonrpc.NewErrorResponse(nil, rpcErr))
		return
	}

	req, ok := msg.(*jsonrpc.Request)
	if !ok {
		if n, isNotification := msg.(*jsonrpc.Notification); isNotification {
			h.server.HandleNotification(r.Context(), n)
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if req.Method == MethodInitialize {
		h.handleInitialize(w, r, req)
		return
	}

	if h.requireSession {
		if _, ok := session.FromContext(r.Context()); !ok {
			h.writeResponse(w, r, http.StatusBadRequest, jsonrpc.NewErrorResponse(req.ID,
				jsonrpc.NewError(jsonrpc.InvalidRequest, "Missing session", "send initialize first and pass "+session.HeaderName)))
			return
		}
	}

	h.writeResponse(w, r, http.StatusOK, h.server.Handle(r.Context(), req))
}

func (h *HTTPHandler) handleInitialize(w http.ResponseWriter, r *http.Request, req *jsonrpc.Request) {
	resp := h.server.Handle(r.Context(), req)
	if resp.Error != nil || h.sessions == nil {
		h.writeResponse(w, r, http.StatusOK, resp)
		return
	}

	client := session.ClientInfo{
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
	var params InitializeParams
	if len(req.Params) > 0 && json.Unmarshal(req.Params, &params) == nil {
		client.Name = params.ClientInfo.Name
		client.Version = params.ClientInfo.Version
	}

	sess, err := h.sessions.Create(r.Context(), client)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create session")
		h.writeResponse(w, r, http.StatusInternalServerError, jsonrpc.NewErrorResponse(req.ID,
			jsonrpc.NewError(jsonrpc.InternalError, "Failed to create session", nil)))
		return
	}

	w.Header().Set(session.HeaderName, sess.ID)
	h.writeResponse(w, r, http.StatusOK, resp)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(session.HeaderName)
	if id == "" || h.sessions == nil {
		http.Error(w, "missing "+session.HeaderName+" header", http.StatusBadRequest)
		return
	}

	if _, err := h.sessions.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), session.StatusCode(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) writeResponse(w http.ResponseWriter, r *http.Request, status int, resp *jsonrpc.Response) {
	if acceptsOnlyEventStream(r.Header.Get("Accept")) {
		sse := NewSSEWriter(w)
		w.WriteHeader(status)
		if err := sse.SendEvent(resp); err != nil {
			h.logger.Error().Err(err).Msg("Failed to send SSE response")
		}
		return
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

// acceptsOnlyEventStream reports whether the Accept header lists
// text/event-stream and nothing that would also take JSON.
func acceptsOnlyEventStream(accept string) bool {
	if accept == "" {
		return false
	}

	sse := false
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "text/event-stream":
			sse = true
		case "application/json", "application/*", "*/*":
			return false
		}
	}
	return sse
}
