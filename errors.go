package operand

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode is a machine-readable error code carried by error responses.
type ErrorCode string

const (
	CodeInvalidArgument  ErrorCode = "invalid_argument"
	CodeMissingParameter ErrorCode = "missing_parameter"
	CodeUnknownOperation ErrorCode = "unknown_operation"
	CodeCanceled         ErrorCode = "canceled"
	CodeDeadlineExceeded ErrorCode = "deadline_exceeded"
	CodeInternal         ErrorCode = "internal"
)

// ConversionError reports a failed Value-to-typed-value conversion.
type ConversionError struct {
	Expected TypeTag
	Actual   Kind
	Overflow bool
	// Cause is set for struct conversions that fail inside a codec.
	Cause error
}

func (e *ConversionError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("value out of range for %s", e.Expected)
	}
	if e.Cause != nil {
		return fmt.Sprintf("cannot decode %s as %s: %v", e.Actual, e.Expected, e.Cause)
	}
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// MissingParameterError reports a declared parameter absent from a map
// payload.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %q", e.Name)
}

// ParameterTypeError reports a parameter that was present but could not
// be converted to its declared type.
type ParameterTypeError struct {
	Name     string
	Expected TypeTag
	Actual   Kind
	cause    error
}

func (e *ParameterTypeError) Error() string {
	return fmt.Sprintf("parameter %q: %v", e.Name, e.cause)
}

func (e *ParameterTypeError) Unwrap() error { return e.cause }

// DuplicateError reports a second registration for an already-occupied
// registry key. This is a wiring bug; callers should abort startup.
type DuplicateError struct {
	Owner     TypeID
	Operation string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate handler registration for %s.%s", e.Owner, e.Operation)
}

// UnknownOperationError reports a dispatch to an operation that was
// never registered for the owner type. Recoverable: it becomes an
// error response, never a crash.
type UnknownOperationError struct {
	Owner     TypeID
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation: %s", e.Operation)
}

// codeFor maps an error to the ErrorCode used in the response envelope.
// Handler business errors fall through to CodeInternal; the dispatcher
// never inspects them structurally beyond this mapping.
func codeFor(err error) ErrorCode {
	var unknown *UnknownOperationError
	if errors.As(err, &unknown) {
		return CodeUnknownOperation
	}
	var missing *MissingParameterError
	if errors.As(err, &missing) {
		return CodeMissingParameter
	}
	var paramErr *ParameterTypeError
	if errors.As(err, &paramErr) {
		return CodeInvalidArgument
	}
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return CodeInvalidArgument
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeDeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return CodeCanceled
	}
	return CodeInternal
}

// renderError flattens an error into the human-readable message carried
// by the response envelope. Validation errors are expanded per field;
// joined errors keep every message.
func renderError(err error) string {
	if err == nil {
		return ""
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			messages = append(messages, ve.Field()+": "+formatValidationError(ve))
		}
		return strings.Join(messages, "; ")
	}

	if u, ok := err.(interface{ Unwrap() []error }); ok {
		errs := u.Unwrap()
		if len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = renderError(e)
			}
			return strings.Join(msgs, "; ")
		}
	}

	return err.Error()
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
