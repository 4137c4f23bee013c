package errors

import (
	"fmt"
)

// TransportErrorData contains structured data for transport-related errors
type TransportErrorData struct {
	Transport  string `json:"transport"`
	Operation  string `json:"operation,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

func reasonOf(cause error) string {
	if cause == nil {
		return ""
	}
	return cause.Error()
}

// TransportError creates a generic transport error
func TransportError(transport, operation string, cause error) MCPError {
	message := fmt.Sprintf("%s transport error", transport)
	if operation != "" {
		message = fmt.Sprintf("%s transport error during %s", transport, operation)
	}
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	return WrapError(
		cause,
		CodeTransportError,
		message,
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Transport: transport,
		Operation: operation,
		Reason:    reasonOf(cause),
	})
}

// StdioTransportError creates an error for stdio transport issues
func StdioTransportError(operation string, cause error) MCPError {
	return TransportError("stdio", operation, cause)
}

// HTTPTransportError creates an error for HTTP transport issues
func HTTPTransportError(operation, endpoint string, statusCode int, cause error) MCPError {
	message := fmt.Sprintf("HTTP transport error during %s", operation)
	if statusCode > 0 {
		message = fmt.Sprintf("%s (status %d)", message, statusCode)
	}
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	return WrapError(
		cause,
		CodeTransportError,
		message,
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Transport:  "http",
		Operation:  operation,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Reason:     reasonOf(cause),
	})
}

// TransportAlreadyRunning creates an error for transports that are already running
func TransportAlreadyRunning(transport string) MCPError {
	return NewError(
		CodeTransportError,
		fmt.Sprintf("%s transport is already running", transport),
		CategoryTransport,
		SeverityWarning,
	).WithData(&TransportErrorData{
		Transport: transport,
		Operation: "start",
		Reason:    "already running",
	})
}

// TransportNotRunning creates an error for operations on stopped transports
func TransportNotRunning(transport string) MCPError {
	return NewError(
		CodeTransportError,
		fmt.Sprintf("%s transport is not running", transport),
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Transport: transport,
		Reason:    "not running",
	})
}

// MessageTooLarge creates an error for messages that exceed size limits
func MessageTooLarge(transport string, maxSize int) MCPError {
	return NewError(
		CodeMessageTooLarge,
		fmt.Sprintf("Message exceeds maximum allowed size %d for %s transport", maxSize, transport),
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Transport: transport,
		Operation: "receive_message",
		Reason:    fmt.Sprintf("max %d bytes", maxSize),
	})
}

// InvalidConfiguration creates an error for a configuration value that
// cannot be used
func InvalidConfiguration(key, value, reason string) MCPError {
	return NewError(
		CodeInvalidConfig,
		fmt.Sprintf("Invalid configuration %s=%q: %s", key, value, reason),
		CategoryConfig,
		SeverityCritical,
	).WithData(map[string]string{
		"key":    key,
		"value":  value,
		"reason": reason,
	})
}
