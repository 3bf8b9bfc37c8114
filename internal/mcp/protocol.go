package mcp

import (
	"encoding/json"

	"noves-mcp-go/internal/tools"
)

// Protocol constants.
const (
	DefaultProtocolVersion = "2024-11-05"
	ServerName             = "noves-mcp-server"
	ServerVersion          = "1.0.0"
)

// Method names.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"
	MethodPing        = "ping"
	MethodToolsList   = "tools/list"
	MethodToolsCall   = "tools/call"
)

// Implementation names a client or server.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams are the params of an initialize request.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ClientInfo      Implementation `json:"clientInfo"`
}

// ToolsCapability advertises tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ServerCapabilities lists what the server supports.
type ServerCapabilities struct {
	Tools ToolsCapability `json:"tools"`
}

// InitializeResult answers an initialize request.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

// ListToolsResult answers tools/list.
type ListToolsResult struct {
	Tools []tools.Definition `json:"tools"`
}

// CallToolParams are the params of tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}
