package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/ai4biz/portal/internal/core"
)

const registeredMessage = "You have been successfully registered for the FREE Demo Class! " +
	"We will communicate the Demo class date and next steps to your registered email and mobile number."

type registeredData struct {
	FullName         string              `json:"fullName"`
	Email            string              `json:"email"`
	Board            core.Board          `json:"board"`
	ClassCompleted   core.ClassCompleted `json:"classCompleted"`
	DemoStatus       core.DemoStatus     `json:"demoStatus"`
	RegistrationDate time.Time           `json:"registrationDate"`
}

type registerResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	StudentID string         `json:"studentId"`
	Data      registeredData `json:"data"`
}

// handleRegister handles POST /api/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	req.trim()

	if errs := s.validateRegistration(req); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	rec, err := s.store.Create(r.Context(), req.input())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Success:   true,
		Message:   registeredMessage,
		StudentID: core.DisplayID(rec.ID),
		Data: registeredData{
			FullName:         rec.FullName,
			Email:            rec.Email,
			Board:            rec.Board,
			ClassCompleted:   rec.ClassCompleted,
			DemoStatus:       rec.DemoStatus,
			RegistrationDate: rec.RegistrationDate,
		},
	})
}

// handleRegisterCheck handles GET /api/register/check?email=&phone=, the
// live "already registered" probe used by the form.
func (s *Server) handleRegisterCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email := strings.TrimSpace(q.Get("email"))
	phone := strings.TrimSpace(q.Get("phone"))
	if email == "" && phone == "" {
		respondBadRequest(w, "Provide email or phone to check.")
		return
	}

	_, exists := s.store.FindDuplicate(email, phone)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"exists":  exists,
	})
}
