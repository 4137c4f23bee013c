package errors

import (
	"fmt"
)

// ToolErrorData contains structured data for tool dispatch failures
type ToolErrorData struct {
	Tool       string      `json:"tool"`
	Reason     string      `json:"reason,omitempty"`
	Violations interface{} `json:"violations,omitempty"`
	Panic      bool        `json:"panic,omitempty"`
}

// UnknownTool creates an error for a call naming a tool that is not registered
func UnknownTool(name string) MCPError {
	return NewError(
		CodeToolNotFound,
		fmt.Sprintf("Unknown tool: %s", name),
		CategoryNotFound,
		SeverityWarning,
	).WithData(&ToolErrorData{
		Tool:   name,
		Reason: "not registered",
	}).WithContext(&Context{ToolName: name, Operation: "lookup"})
}

// InvalidArguments creates an error for arguments that failed schema
// validation. The violation text of cause is kept verbatim.
func InvalidArguments(name string, cause error) MCPError {
	text := "invalid arguments"
	var violations interface{}
	if cause != nil {
		text = cause.Error()
		if mcpErr, ok := AsMCPError(cause); ok {
			text = mcpErr.Message()
			violations = mcpErr.Data()
		}
	}

	return WrapError(
		cause,
		CodeInvalidParams,
		fmt.Sprintf("Invalid arguments for %s: %s", name, text),
		CategoryValidation,
		SeverityWarning,
	).WithData(&ToolErrorData{
		Tool:       name,
		Reason:     "validation failed",
		Violations: violations,
	}).WithContext(&Context{ToolName: name, Operation: "validate"})
}

// HandlerFailure creates an error for a tool handler that returned an error
func HandlerFailure(name string, cause error) MCPError {
	text := "unknown error"
	if cause != nil {
		text = cause.Error()
	}

	return WrapError(
		cause,
		CodeToolExecutionFailed,
		text,
		CategoryTool,
		SeverityError,
	).WithData(&ToolErrorData{
		Tool:   name,
		Reason: "handler error",
	}).WithContext(&Context{ToolName: name, Operation: "execute"})
}

// HandlerPanic creates an error for a tool handler that panicked
func HandlerPanic(name string, recovered interface{}) MCPError {
	return NewError(
		CodeToolExecutionFailed,
		fmt.Sprintf("%v", recovered),
		CategoryTool,
		SeverityCritical,
	).WithData(&ToolErrorData{
		Tool:   name,
		Reason: "handler panic",
		Panic:  true,
	}).WithContext(&Context{ToolName: name, Operation: "execute"})
}

// ToolRegistrationFailed creates an error for an invalid tool definition
// detected while the registry is built
func ToolRegistrationFailed(name, reason string) MCPError {
	return NewError(
		CodeToolRegistration,
		fmt.Sprintf("Cannot register tool %q: %s", name, reason),
		CategoryConfig,
		SeverityCritical,
	).WithData(&ToolErrorData{
		Tool:   name,
		Reason: reason,
	})
}
