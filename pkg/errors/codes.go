package errors

// JSON-RPC 2.0 standard error codes
const (
	// CodeParseError indicates invalid JSON was received by the server
	CodeParseError int = -32700

	// CodeInvalidRequest indicates the JSON sent is not a valid Request object
	CodeInvalidRequest int = -32600

	// CodeMethodNotFound indicates the method does not exist / is not available
	CodeMethodNotFound int = -32601

	// CodeInvalidParams indicates invalid method parameter(s)
	CodeInvalidParams int = -32602

	// CodeInternalError indicates internal JSON-RPC error
	CodeInternalError int = -32603
)

// Server-defined error codes
const (
	// Server errors (-32000 to -32099)
	CodeServerInitError int = -32000
	CodeServerNotReady  int = -32001

	// Tool errors (-32200 to -32299)
	CodeToolNotFound        int = -32200
	CodeToolExecutionFailed int = -32201
	CodeToolRegistration    int = -32202

	// Operation errors (-32300 to -32399)
	CodeOperationCancelled int = -32300
	CodeOperationTimeout   int = -32301

	// Transport errors (-32500 to -32599)
	CodeTransportError  int = -32500
	CodeMessageTooLarge int = -32504

	// Configuration errors (-32650 to -32699)
	CodeInvalidConfig int = -32650

	// Validation errors (-32750 to -32799)
	CodeValidationError   int = -32750
	CodeMissingParameter  int = -32751
	CodeInvalidParameter  int = -32752
	CodeParameterTooLarge int = -32753
	CodeParameterTooSmall int = -32754
	CodeInvalidFormat     int = -32755
)

// ErrorCodeInfo provides human-readable information about error codes
type ErrorCodeInfo struct {
	Code        int
	Name        string
	Description string
	Category    Category
	Severity    Severity
}

var errorCodeRegistry = map[int]ErrorCodeInfo{
	CodeParseError:     {CodeParseError, "ParseError", "Invalid JSON was received", CategoryProtocol, SeverityError},
	CodeInvalidRequest: {CodeInvalidRequest, "InvalidRequest", "Invalid Request object", CategoryProtocol, SeverityError},
	CodeMethodNotFound: {CodeMethodNotFound, "MethodNotFound", "Method does not exist", CategoryProtocol, SeverityError},
	CodeInvalidParams:  {CodeInvalidParams, "InvalidParams", "Invalid method parameters", CategoryValidation, SeverityError},
	CodeInternalError:  {CodeInternalError, "InternalError", "Internal JSON-RPC error", CategoryInternal, SeverityError},

	CodeServerInitError: {CodeServerInitError, "ServerInitError", "Server initialization failed", CategoryInternal, SeverityCritical},
	CodeServerNotReady:  {CodeServerNotReady, "ServerNotReady", "Server not ready", CategoryInternal, SeverityError},

	CodeToolNotFound:        {CodeToolNotFound, "ToolNotFound", "Tool not found", CategoryNotFound, SeverityWarning},
	CodeToolExecutionFailed: {CodeToolExecutionFailed, "ToolExecutionFailed", "Tool execution failed", CategoryTool, SeverityError},
	CodeToolRegistration:    {CodeToolRegistration, "ToolRegistration", "Invalid tool registration", CategoryConfig, SeverityCritical},

	CodeOperationCancelled: {CodeOperationCancelled, "OperationCancelled", "Operation cancelled", CategoryCancelled, SeverityInfo},
	CodeOperationTimeout:   {CodeOperationTimeout, "OperationTimeout", "Operation timed out", CategoryTimeout, SeverityError},

	CodeTransportError:  {CodeTransportError, "TransportError", "Transport error", CategoryTransport, SeverityError},
	CodeMessageTooLarge: {CodeMessageTooLarge, "MessageTooLarge", "Message too large", CategoryTransport, SeverityError},

	CodeInvalidConfig: {CodeInvalidConfig, "InvalidConfig", "Invalid configuration", CategoryConfig, SeverityCritical},

	CodeValidationError:   {CodeValidationError, "ValidationError", "Validation error", CategoryValidation, SeverityError},
	CodeMissingParameter:  {CodeMissingParameter, "MissingParameter", "Required parameter missing", CategoryValidation, SeverityError},
	CodeInvalidParameter:  {CodeInvalidParameter, "InvalidParameter", "Invalid parameter value", CategoryValidation, SeverityError},
	CodeParameterTooLarge: {CodeParameterTooLarge, "ParameterTooLarge", "Parameter value too large", CategoryValidation, SeverityError},
	CodeParameterTooSmall: {CodeParameterTooSmall, "ParameterTooSmall", "Parameter value too small", CategoryValidation, SeverityError},
	CodeInvalidFormat:     {CodeInvalidFormat, "InvalidFormat", "Invalid parameter format", CategoryValidation, SeverityError},
}

// GetErrorCodeInfo returns information about an error code
func GetErrorCodeInfo(code int) (ErrorCodeInfo, bool) {
	info, exists := errorCodeRegistry[code]
	return info, exists
}

// GetErrorCodeName returns the name of an error code
func GetErrorCodeName(code int) string {
	if info, exists := errorCodeRegistry[code]; exists {
		return info.Name
	}
	return "UnknownError"
}

// GetErrorCodeCategory returns the category of an error code
func GetErrorCodeCategory(code int) Category {
	if info, exists := errorCodeRegistry[code]; exists {
		return info.Category
	}
	return CategoryInternal
}

// GetErrorCodeSeverity returns the severity of an error code
func GetErrorCodeSeverity(code int) Severity {
	if info, exists := errorCodeRegistry[code]; exists {
		return info.Severity
	}
	return SeverityError
}

// IsStandardJSONRPCCode checks if a code is one of the five codes the
// JSON-RPC 2.0 specification predefines.
func IsStandardJSONRPCCode(code int) bool {
	switch code {
	case CodeParseError, CodeInvalidRequest, CodeMethodNotFound, CodeInvalidParams, CodeInternalError:
		return true
	}
	return false
}
