package errors

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationErrorData contains structured data for a single field violation
type ValidationErrorData struct {
	Field      string      `json:"field,omitempty"`
	Value      interface{} `json:"value,omitempty"`
	Expected   string      `json:"expected,omitempty"`
	Got        string      `json:"got,omitempty"`
	Constraint string      `json:"constraint,omitempty"`
}

// fieldMessage prefixes msg with the field path; violations on the
// payload itself carry no prefix.
func fieldMessage(field, msg string) string {
	if field == "" {
		return msg
	}
	return field + ": " + msg
}

// FormatNumber renders a float the way it appears in validation messages:
// integral values without a fraction, others in shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finiteOrNil(v float64) interface{} {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return v
}

// ValidationError creates a generic validation error
func ValidationError(message string) MCPError {
	return NewError(CodeValidationError, message, CategoryValidation, SeverityError)
}

// RequiredFieldMissing creates an error for missing required fields
func RequiredFieldMissing(field, expected string) MCPError {
	return NewError(
		CodeMissingParameter,
		fieldMessage(field, "Required"),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{
		Field:      field,
		Expected:   expected,
		Got:        "undefined",
		Constraint: "required",
	})
}

// InvalidFieldType creates an error for a value of the wrong kind
func InvalidFieldType(field string, value interface{}, expected, received string) MCPError {
	return NewError(
		CodeInvalidParameter,
		fieldMessage(field, fmt.Sprintf("Expected %s, received %s", expected, received)),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{
		Field:      field,
		Value:      value,
		Expected:   expected,
		Got:        received,
		Constraint: "type",
	})
}

// ValueTooSmall creates an error for numbers below an inclusive minimum
func ValueTooSmall(field string, value, minValue float64) MCPError {
	return NewError(
		CodeParameterTooSmall,
		fieldMessage(field, "Number must be greater than or equal to "+FormatNumber(minValue)),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{
		Field:      field,
		Value:      finiteOrNil(value),
		Expected:   ">= " + FormatNumber(minValue),
		Got:        FormatNumber(value),
		Constraint: "minimum",
	})
}

// ValueTooLarge creates an error for numbers above an inclusive maximum
func ValueTooLarge(field string, value, maxValue float64) MCPError {
	return NewError(
		CodeParameterTooLarge,
		fieldMessage(field, "Number must be less than or equal to "+FormatNumber(maxValue)),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{
		Field:      field,
		Value:      finiteOrNil(value),
		Expected:   "<= " + FormatNumber(maxValue),
		Got:        FormatNumber(value),
		Constraint: "maximum",
	})
}

// NotAnInteger creates an error for numbers with a fractional part where
// a whole number is required
func NotAnInteger(field string, value float64) MCPError {
	return NewError(
		CodeInvalidFormat,
		fieldMessage(field, "Expected integer, received float"),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{
		Field:      field,
		Value:      value,
		Expected:   "integer",
		Got:        "float",
		Constraint: "integer",
	})
}

// MalformedPayload creates an error for argument payloads that are not
// valid JSON
func MalformedPayload(cause error) MCPError {
	return WrapError(
		cause,
		CodeInvalidFormat,
		fmt.Sprintf("Malformed JSON: %s", reasonOf(cause)),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{
		Expected:   "object",
		Got:        "malformed JSON",
		Constraint: "syntax",
	})
}

// InvalidEnum creates an error for invalid enumeration values
func InvalidEnum(field string, value interface{}, validValues []string) MCPError {
	quoted := make([]string, len(validValues))
	for i, v := range validValues {
		quoted[i] = "'" + v + "'"
	}
	return NewError(
		CodeInvalidParameter,
		fieldMessage(field, "Invalid enum value. Expected "+strings.Join(quoted, " | ")),
		CategoryValidation,
		SeverityError,
	).WithData(&ValidationErrorData{
		Field:      field,
		Value:      value,
		Expected:   fmt.Sprintf("one of %v", validValues),
		Constraint: "enum",
	})
}

// CombineValidationErrors combines every violation found in one payload
// into a single invalid-params error. The message lists the violations
// in the order they were found, separated by "; ".
func CombineValidationErrors(errs []MCPError) MCPError {
	if len(errs) == 0 {
		return nil
	}

	messages := make([]string, len(errs))
	errorData := make([]interface{}, len(errs))
	for i, err := range errs {
		messages[i] = err.Message()
		errorData[i] = err.Data()
	}

	return NewError(
		CodeInvalidParams,
		strings.Join(messages, "; "),
		CategoryValidation,
		SeverityError,
	).WithData(map[string]interface{}{
		"errors": errorData,
		"count":  len(errs),
	})
}
