package protocol

import (
	"encoding/json"
	"testing"
)

func TestNegotiateProtocolVersion(t *testing.T) {
	tests := []struct {
		requested string
		want      string
	}{
		{ProtocolRevision, ProtocolRevision},
		{"2024-11-05", "2024-11-05"},
		{"1999-01-01", ProtocolRevision},
		{"", ProtocolRevision},
	}

	for _, tt := range tests {
		if got := NegotiateProtocolVersion(tt.requested); got != tt.want {
			t.Errorf("NegotiateProtocolVersion(%q) = %q, want %q", tt.requested, got, tt.want)
		}
	}
}

func TestInitializeResultSerialization(t *testing.T) {
	result := InitializeResult{
		ProtocolVersion: ProtocolRevision,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      Implementation{Name: "logic-gates", Version: "1.0.0"},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Failed to marshal InitializeResult: %v", err)
	}

	want := `{"protocolVersion":"2025-03-26","capabilities":{"tools":{}},"serverInfo":{"name":"logic-gates","version":"1.0.0"}}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, string(data))
	}
}

func TestInitializeParamsDecoding(t *testing.T) {
	raw := `{"protocolVersion":"2024-11-05","capabilities":{"sampling":{}},"clientInfo":{"name":"inspector","version":"0.1"}}`

	var params InitializeParams
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		t.Fatalf("Failed to unmarshal InitializeParams: %v", err)
	}

	if params.ClientInfo.Name != "inspector" {
		t.Errorf("Expected client name 'inspector', got %q", params.ClientInfo.Name)
	}

	if params.ProtocolVersion != "2024-11-05" {
		t.Errorf("Expected protocol version '2024-11-05', got %q", params.ProtocolVersion)
	}
}
