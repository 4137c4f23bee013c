package protocol

import (
	"encoding/json"
)

// ContentTypeText is the only content block type produced by tool calls
const ContentTypeText = "text"

// Tool represents a tool in the MCP protocol
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ListToolsParams defines parameters for listing tools.
// The cursor is accepted for compatibility; the tool list is never paginated.
type ListToolsParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// ListToolsResult defines the response for listing tools
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams defines parameters for calling a tool
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Content is a typed block in a tool result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult defines the response for tool calls. IsError marks the
// content as a diagnostic rather than a result and is omitted on success.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// NewTextResult builds a successful result holding a single text block
func NewTextResult(text string) *CallToolResult {
	return &CallToolResult{
		Content: []Content{{Type: ContentTypeText, Text: text}},
	}
}

// NewErrorResult builds a failed result holding a single diagnostic text block
func NewErrorResult(text string) *CallToolResult {
	return &CallToolResult{
		Content: []Content{{Type: ContentTypeText, Text: text}},
		IsError: true,
	}
}

// Text returns the concatenated text of all text blocks
func (r *CallToolResult) Text() string {
	var s string
	for _, c := range r.Content {
		if c.Type == ContentTypeText {
			s += c.Text
		}
	}
	return s
}
