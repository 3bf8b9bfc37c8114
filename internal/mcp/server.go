// Package mcp implements the MCP tool host over JSON-RPC 2.0 and its HTTP
// and stdio transports.
package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"noves-mcp-go/internal/jsonrpc"
	"noves-mcp-go/internal/tools"
)

// Server answers MCP requests by routing tool calls to a Dispatcher.
type Server struct {
	dispatcher *tools.Dispatcher
	logger     zerolog.Logger
}

// NewServer creates a server over dispatcher.
func NewServer(dispatcher *tools.Dispatcher, logger zerolog.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "mcp").Logger(),
	}
}

// HandleMessage parses one raw JSON-RPC message and handles it. It returns
// nil when no reply is due, i.e. for notifications and responses.
func (s *Server) HandleMessage(ctx context.Context, data []byte) *jsonrpc.Response {
	msg, err := jsonrpc.ParseMessage(data)
	if err != nil {
		var rpcErr *jsonrpc.Error
		if !errors.As(err, &rpcErr) {
			rpcErr = jsonrpc.NewError(jsonrpc.InternalError, "Internal error", err.Error())
		}
		return jsonrpc.NewErrorResponse(nil, rpcErr)
	}

	switch m := msg.(type) {
	case *jsonrpc.Request:
		return s.Handle(ctx, m)
	case *jsonrpc.Notification:
		s.HandleNotification(ctx, m)
	default:
		s.logger.Debug().Msg("Ignoring JSON-RPC response from client")
	}
	return nil
}

// Handle answers a single request.
func (s *Server) Handle(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	logger := s.logger.With().Str("method", req.Method).Interface("request_id", req.ID).Logger()
	logger.Debug().Msg("Handling request")

	switch req.Method {
	case MethodInitialize:
		params, rpcErr := decodeParams[InitializeParams](req.Params, false)
		if rpcErr != nil {
			return jsonrpc.NewErrorResponse(req.ID, rpcErr)
		}
		return jsonrpc.NewResult(req.ID, s.initialize(params))

	case MethodPing:
		return jsonrpc.NewResult(req.ID, struct{}{})

	case MethodToolsList:
		return jsonrpc.NewResult(req.ID, ListToolsResult{Tools: s.dispatcher.Registry().Definitions()})

	case MethodToolsCall:
		params, rpcErr := decodeParams[CallToolParams](req.Params, true)
		if rpcErr != nil {
			return jsonrpc.NewErrorResponse(req.ID, rpcErr)
		}
		if params.Name == "" {
			return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid params", "missing tool name"))
		}
		return jsonrpc.NewResult(req.ID, s.dispatcher.Dispatch(ctx, params.Name, params.Arguments))

	default:
		logger.Warn().Msg("Method not found")
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.MethodNotFound, "Method not found", req.Method))
	}
}

// HandleNotification processes a notification. None of them produce output.
func (s *Server) HandleNotification(_ context.Context, n *jsonrpc.Notification) {
	switch n.Method {
	case MethodInitialized:
		s.logger.Info().Msg("Client initialized")
	default:
		s.logger.Debug().Str("method", n.Method).Msg("Ignoring notification")
	}
}

func (s *Server) initialize(params InitializeParams) InitializeResult {
	version := params.ProtocolVersion
	if version == "" {
		version = DefaultProtocolVersion
	}

	s.logger.Info().
		Str("client", params.ClientInfo.Name).
		Str("client_version", params.ClientInfo.Version).
		Str("protocol_version", version).
		Msg("Initialize")

	return InitializeResult{
		ProtocolVersion: version,
		Capabilities:    ServerCapabilities{Tools: ToolsCapability{}},
		ServerInfo:      Implementation{Name: ServerName, Version: ServerVersion},
	}
}

func decodeParams[T any](raw json.RawMessage, required bool) (T, *jsonrpc.Error) {
	var params T
	if len(raw) == 0 || string(raw) == "null" {
		if required {
			return params, jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid params", "missing params")
		}
		return params, nil
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid params", err.Error())
	}
	return params, nil
}
