package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
)

// ToJSONRPCError converts any error to a JSON-RPC error object
func ToJSONRPCError(err error) *protocol.Error {
	if err == nil {
		return nil
	}

	if mcpErr, ok := AsMCPError(err); ok {
		return &protocol.Error{
			Code:    protocol.ErrorCode(mcpErr.Code()),
			Message: mcpErr.Message(),
			Data:    mcpErr.Data(),
		}
	}

	var rpcErr *protocol.Error
	if stderrors.As(err, &rpcErr) {
		return rpcErr
	}

	return &protocol.Error{
		Code:    protocol.InternalError,
		Message: err.Error(),
	}
}

// ToJSONRPCResponse converts any error to a JSON-RPC error response for requestID
func ToJSONRPCResponse(err error, requestID interface{}) *protocol.Response {
	rpcErr := ToJSONRPCError(err)
	if rpcErr == nil {
		rpcErr = &protocol.Error{Code: protocol.InternalError, Message: "unknown error"}
	}
	return protocol.NewErrorResponse(requestID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
}

// OperationCancelled creates an error for an operation whose context was cancelled
func OperationCancelled(operation string) MCPError {
	return NewError(
		CodeOperationCancelled,
		fmt.Sprintf("Operation cancelled: %s", operation),
		CategoryCancelled,
		SeverityInfo,
	)
}

// OperationTimeout creates an error for an operation whose deadline passed
func OperationTimeout(operation string) MCPError {
	return NewError(
		CodeOperationTimeout,
		fmt.Sprintf("Operation timed out: %s", operation),
		CategoryTimeout,
		SeverityError,
	)
}

// ConvertStandardError converts common Go errors to appropriate MCP errors
func ConvertStandardError(err error) MCPError {
	if err == nil {
		return nil
	}

	if mcpErr, ok := AsMCPError(err); ok {
		return mcpErr
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return OperationCancelled("request")
	case stderrors.Is(err, context.DeadlineExceeded):
		return OperationTimeout("request")
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return WrapError(err, CodeParseError, "Parse error", CategoryProtocol, SeverityError).WithDetail(err.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return WrapError(err, CodeInvalidParams, "Invalid parameter type", CategoryValidation, SeverityError).WithDetail(err.Error())
	}

	return WrapError(err, CodeInternalError, "Internal error", CategoryInternal, SeverityError).WithDetail(err.Error())
}

// CreateMethodNotFoundError creates a standardized method not found error
func CreateMethodNotFoundError(method string, requestID interface{}) MCPError {
	return NewError(
		CodeMethodNotFound,
		fmt.Sprintf("Method not found: %s", method),
		CategoryProtocol,
		SeverityError,
	).WithContext(&Context{
		Method:    method,
		RequestID: fmt.Sprintf("%v", requestID),
	})
}

// CreateInvalidParamsError creates a standardized invalid params error
func CreateInvalidParamsError(method string, requestID interface{}, details string) MCPError {
	message := "Invalid method parameters"
	if details != "" {
		message = fmt.Sprintf("Invalid method parameters: %s", details)
	}

	return NewError(
		CodeInvalidParams,
		message,
		CategoryValidation,
		SeverityError,
	).WithContext(&Context{
		Method:    method,
		RequestID: fmt.Sprintf("%v", requestID),
	})
}

// CreateParseError creates a standardized parse error
func CreateParseError(details string) MCPError {
	err := NewError(CodeParseError, "Parse error", CategoryProtocol, SeverityError)
	if details != "" {
		err = err.WithDetail(details)
	}
	return err
}

// CreateInvalidRequestError creates a standardized invalid request error
func CreateInvalidRequestError(details string) MCPError {
	message := "Invalid Request"
	if details != "" {
		message = fmt.Sprintf("Invalid Request: %s", details)
	}
	return NewError(CodeInvalidRequest, message, CategoryProtocol, SeverityError)
}

// CreateInternalError creates a standardized internal error with optional context
func CreateInternalError(operation string, cause error) MCPError {
	message := "Internal error"
	if operation != "" {
		message = fmt.Sprintf("Internal error during %s", operation)
	}

	err := WrapError(cause, CodeInternalError, message, CategoryInternal, SeverityError)
	if operation != "" {
		err = err.WithContext(&Context{Operation: operation})
	}
	return err
}
