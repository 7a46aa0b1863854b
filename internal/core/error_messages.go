package core

// error_messages.go maps technical errors to user-friendly messages with
// codes for support reference. When a student or admin reports an error code,
// support staff can look it up here.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Field constraint: A submitted field is invalid
//	         Action: Correct the highlighted field and submit again
//	VAL002 - Invalid enum: Value is not in the allowed list
//	         Patterns: "invalid enum"
//	VAL003 - Malformed body: Request body could not be read
//	         Patterns: "invalid request body"
//
// # Registration Errors (REG001-REG099)
//
//	REG001 - Duplicate: A student with this email or phone is already registered
//	REG002 - Not found: The student record does not exist (it may have been deleted)
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - Persistence: The dataset could not be read or written
//	         Action: Please try again; check server logs for the cause
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Busy: Too many exports in progress
//	EXP002 - Render: The report could not be generated
//	         Patterns: "render"
//
// # Auth Errors (AUTH001-AUTH099)
//
//	AUTH001 - Missing token: No session token was provided
//	          Patterns: "no token provided"
//	AUTH002 - Invalid token: Session is invalid or expired
//	          Patterns: "invalid or expired session", "invalid username or password"
//
// # Request Errors (REQ001-REQ099, RATE001)
//
//	REQ001 - Cancelled: Patterns "context canceled"
//	REQ002 - Timeout: Patterns "context deadline exceeded", "timeout"
//	RATE001 - Rate limited: Patterns "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check application logs for the original error.
//
// Typed errors (ValidationError, DuplicateError, NotFoundError,
// PersistenceError, ErrTooManyExports) are matched first with errors.As/Is.
// Remaining errors are matched case-insensitively against patterns; the
// first matching pattern wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Field   string // Offending field, when known
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "invalid enum",
		msg: UserMessage{
			Message: "Value is not in the allowed list",
			Action:  "Check the allowed values for this field",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a valid JSON body",
			Code:    "VAL003",
		},
	},
	{
		pattern: "render",
		msg: UserMessage{
			Message: "The report could not be generated",
			Action:  "Please try again or contact support",
			Code:    "EXP002",
		},
	},
	{
		pattern: "no token provided",
		msg: UserMessage{
			Message: "Unauthorized: No token provided.",
			Action:  "Log in to continue",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid or expired session",
		msg: UserMessage{
			Message: "Unauthorized: Invalid or expired session. Please log in again.",
			Action:  "Log in again",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "invalid username or password",
		msg: UserMessage{
			Message: "Invalid username or password.",
			Action:  "Check your credentials and try again",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests. Please try again later.",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		ve *ValidationError
		de *DuplicateError
		nf *NotFoundError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		code := "VAL001"
		if strings.Contains(ve.Message, "invalid enum") {
			code = "VAL002"
		}
		return UserMessage{
			Message: ve.Message,
			Action:  "Correct the highlighted field and submit again",
			Code:    code,
			Field:   ve.Field,
		}
	case errors.As(err, &de):
		return UserMessage{
			Message: fmt.Sprintf("A student with this %s is already registered.", de.Field),
			Action:  "Use a different " + de.Field + " or contact the office",
			Code:    "REG001",
			Field:   de.Field,
		}
	case errors.As(err, &nf):
		return UserMessage{
			Message: "Student not found.",
			Action:  "Refresh the list; the record may have been deleted",
			Code:    "REG002",
		}
	case errors.Is(err, ErrTooManyExports):
		return UserMessage{
			Message: "Too many exports in progress",
			Action:  "Please wait a moment and try again",
			Code:    "EXP001",
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// fall through to pattern matching below
	case errors.As(err, &pe):
		return UserMessage{
			Message: "The registration data could not be saved or loaded",
			Action:  "Please try again; contact support if it persists",
			Code:    "STO001",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
