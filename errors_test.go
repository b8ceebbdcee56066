package operand

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"unknown operation", &UnknownOperationError{Owner: "t.Calc", Operation: "subtract"}, CodeUnknownOperation},
		{"missing parameter", &MissingParameterError{Name: "b"}, CodeMissingParameter},
		{"parameter type", &ParameterTypeError{Name: "a", Expected: TagInt64, Actual: KindString}, CodeInvalidArgument},
		{"conversion", &ConversionError{Expected: TagBool, Actual: KindInt}, CodeInvalidArgument},
		{"deadline", context.DeadlineExceeded, CodeDeadlineExceeded},
		{"canceled", context.Canceled, CodeCanceled},
		{"generic", errors.New("something failed"), CodeInternal},
		{"wrapped missing", fmt.Errorf("dispatch: %w", &MissingParameterError{Name: "x"}), CodeMissingParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codeFor(tt.err); got != tt.want {
				t.Errorf("codeFor(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestConversionErrorMessages(t *testing.T) {
	overflow := &ConversionError{Expected: TagInt32, Actual: KindInt, Overflow: true}
	if !strings.Contains(overflow.Error(), "out of range") {
		t.Errorf("overflow message = %q", overflow.Error())
	}

	cause := errors.New("bad json")
	wrapped := &ConversionError{Expected: TagStruct("t.Point"), Actual: KindMap, Cause: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("conversion error does not unwrap to its cause")
	}
	if !strings.Contains(wrapped.Error(), "bad json") {
		t.Errorf("message = %q", wrapped.Error())
	}

	plain := &ConversionError{Expected: TagString, Actual: KindInt}
	if got := plain.Error(); got != "expected string, got int" {
		t.Errorf("message = %q", got)
	}
}

func TestParameterTypeErrorUnwrap(t *testing.T) {
	inner := &ConversionError{Expected: TagFloat64, Actual: KindString}
	err := &ParameterTypeError{Name: "a", Expected: TagFloat64, Actual: KindString, cause: inner}

	var conv *ConversionError
	if !errors.As(err, &conv) {
		t.Fatal("parameter error does not unwrap to conversion error")
	}
	if !strings.Contains(err.Error(), `"a"`) {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRenderErrorValidation(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
		Age   int    `validate:"gte=0,lte=120"`
	}

	err := validate.Struct(form{Email: "invalid", Age: -1})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	msg := renderError(err)
	if !strings.Contains(msg, "Email") || !strings.Contains(msg, "email address") {
		t.Errorf("message missing Email detail: %q", msg)
	}
	if !strings.Contains(msg, "Age") || !strings.Contains(msg, "at least 0") {
		t.Errorf("message missing Age detail: %q", msg)
	}
}

func TestRenderErrorJoined(t *testing.T) {
	err := errors.Join(errors.New("error 1"), errors.New("error 2"))
	if got := renderError(err); got != "error 1; error 2" {
		t.Errorf("renderError = %q", got)
	}
}

func TestRenderErrorNil(t *testing.T) {
	if got := renderError(nil); got != "" {
		t.Errorf("renderError(nil) = %q", got)
	}
}

func TestFormatValidationErrorTags(t *testing.T) {
	type bounded struct {
		Name  string `validate:"required"`
		Count int    `validate:"min=2"`
		Mode  string `validate:"omitempty,oneof=fast slow"`
	}

	err := validate.Struct(bounded{Count: 1, Mode: "medium"})
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		t.Fatal("expected validator.ValidationErrors")
	}

	byField := map[string]string{}
	for _, ve := range valErrs {
		byField[ve.Field()] = formatValidationError(ve)
	}
	if byField["Name"] != "required" {
		t.Errorf("Name = %q", byField["Name"])
	}
	if byField["Count"] != "must be at least 2" {
		t.Errorf("Count = %q", byField["Count"])
	}
	if byField["Mode"] != "must be one of: fast slow" {
		t.Errorf("Mode = %q", byField["Mode"])
	}
}

func TestDuplicateErrorMessage(t *testing.T) {
	err := &DuplicateError{Owner: "calc.Calc", Operation: "add"}
	if !strings.Contains(err.Error(), "calc.Calc.add") {
		t.Errorf("message = %q", err.Error())
	}
}
