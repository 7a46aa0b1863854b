package web

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ai4biz/portal/internal/core"
	"github.com/go-playground/validator/v10"
)

// indianMobile matches a 10-digit Indian mobile number.
var indianMobile = regexp.MustCompile(`^[6-9]\d{9}$`)

// registrationRequest is the public registration form.
type registrationRequest struct {
	FullName       string `json:"fullName" validate:"required,min=2,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,mobile"`
	Board          string `json:"board" validate:"required,board"`
	ClassCompleted string `json:"classCompleted" validate:"required,class"`
}

func (r *registrationRequest) trim() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Board = strings.TrimSpace(r.Board)
	r.ClassCompleted = strings.TrimSpace(r.ClassCompleted)
}

func (r registrationRequest) input() core.CreateInput {
	return core.CreateInput{
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		Board:          r.Board,
		ClassCompleted: r.ClassCompleted,
	}
}

// fieldMessages holds the message for a failed field; "required" has its own
// entry, every other tag shares the "" entry.
var fieldMessages = map[string]map[string]string{
	"fullName": {
		"required": "Full name is required",
		"":         "Full name must be 2–100 characters",
	},
	"email": {
		"required": "Email is required",
		"":         "Please provide a valid email address",
	},
	"phone": {
		"required": "Phone number is required",
		"":         "Please enter a valid 10-digit Indian mobile number",
	},
	"board": {
		"required": "Board is required",
		"":         "Please select a valid board",
	},
	"classCompleted": {
		"required": "Class completed is required",
		"":         "Please select a valid class",
	},
}

// newValidator returns a validator that reports JSON field names and knows
// the registration enums.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	custom := map[string]validator.Func{
		"mobile": func(fl validator.FieldLevel) bool {
			return indianMobile.MatchString(fl.Field().String())
		},
		"board": func(fl validator.FieldLevel) bool {
			return core.Board(fl.Field().String()).Valid()
		},
		"class": func(fl validator.FieldLevel) bool {
			return core.ClassCompleted(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range custom {
		mustRegister(v, tag, fn)
	}
	return v
}

// mustRegister panics when a custom tag cannot be registered; that only
// happens for a malformed tag name.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// validateRegistration returns one FieldError per failed field, in form order.
func (s *Server) validateRegistration(req registrationRequest) []FieldError {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msgs := fieldMessages[fe.Field()]
		msg, ok := msgs[fe.Tag()]
		if !ok {
			msg = msgs[""]
		}
		if msg == "" {
			msg = fe.Error()
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
