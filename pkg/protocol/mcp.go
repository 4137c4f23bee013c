package protocol

import "encoding/json"

const (
	// Current protocol revision
	ProtocolRevision = "2025-03-26"

	// Methods for lifecycle management
	MethodInitialize  = "initialize"
	MethodInitialized = "notifications/initialized"

	// Methods for server features
	MethodListTools = "tools/list"
	MethodCallTool  = "tools/call"

	// Methods for utilities
	MethodPing      = "ping"
	MethodCancelled = "notifications/cancelled"
)

// SupportedProtocolVersions lists the revisions the server can negotiate,
// newest first.
var SupportedProtocolVersions = []string{
	ProtocolRevision,
	"2024-11-05",
}

// NegotiateProtocolVersion returns the requested revision when supported,
// otherwise the latest revision the server speaks.
func NegotiateProtocolVersion(requested string) string {
	for _, v := range SupportedProtocolVersions {
		if v == requested {
			return v
		}
	}
	return ProtocolRevision
}

// Implementation identifies a client or server by name and version
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsCapability advertises tool support. ListChanged is always false
// for a server whose tool set is fixed at startup.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities defines the features a server offers
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// InitializeParams defines the parameters for the initialize request
type InitializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      Implementation  `json:"clientInfo"`
}

// InitializeResult defines the response for the initialize request
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// PingResult is the empty result of a ping request
type PingResult struct{}
