package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  string
		wantField string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:      "validation error carries field",
			err:       &ValidationError{Field: "fullName", Message: "Full name must be 2-100 characters"},
			wantCode:  "VAL001",
			wantField: "fullName",
		},
		{
			name:      "enum validation error",
			err:       &ValidationError{Field: "demoStatus", Message: `invalid enum value "Maybe"`},
			wantCode:  "VAL002",
			wantField: "demoStatus",
		},
		{
			name:      "wrapped duplicate error",
			err:       fmt.Errorf("register: %w", &DuplicateError{Field: "phone"}),
			wantCode:  "REG001",
			wantField: "phone",
		},
		{
			name:     "not found error",
			err:      &NotFoundError{ID: "abc"},
			wantCode: "REG002",
		},
		{
			name:     "persistence error",
			err:      &PersistenceError{Op: "create", Err: errors.New("disk full")},
			wantCode: "STO001",
		},
		{
			name:     "cancelled persistence maps to request cancelled",
			err:      &PersistenceError{Op: "load", Err: context.Canceled},
			wantCode: "REQ001",
		},
		{
			name:     "export busy",
			err:      ErrTooManyExports,
			wantCode: "EXP001",
		},
		{
			name:     "rate limit pattern",
			err:      errors.New("rate limit exceeded"),
			wantCode: "RATE001",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("RENDER FAILED"),
			wantCode: "EXP002",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Field != tt.wantField {
				t.Errorf("MapError() field = %q, want %q", got.Field, tt.wantField)
			}
		})
	}
}

func TestMapError_DuplicateMessage(t *testing.T) {
	got := MapError(&DuplicateError{Field: "email"})
	want := "A student with this email is already registered."
	if got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(&NotFoundError{ID: "x"})
	want := "Student not found. (Code: REG002). Refresh the list; the record may have been deleted"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(&DuplicateError{Field: "email"}) {
		t.Error("duplicate error should be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unknown error should not be user facing")
	}
}
