package core

import (
	"context"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for persisted registration dates.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Board is the examination board a student studied under.
type Board string

const (
	BoardICSE       Board = "ICSE"
	BoardCBSE       Board = "CBSE"
	BoardWestBengal Board = "West Bengal"
	BoardOthers     Board = "Others"
)

// Boards lists every accepted board in display order.
var Boards = []Board{BoardICSE, BoardCBSE, BoardWestBengal, BoardOthers}

// ClassCompleted is the last class a student completed.
type ClassCompleted string

const (
	ClassSecondary       ClassCompleted = "Secondary"
	ClassHigherSecondary ClassCompleted = "Higher Secondary"
	ClassOthers          ClassCompleted = "Others"
)

// Classes lists every accepted class in display order.
var Classes = []ClassCompleted{ClassSecondary, ClassHigherSecondary, ClassOthers}

// DemoStatus tracks attendance of the free demo class.
type DemoStatus string

const (
	DemoRegistered  DemoStatus = "Registered"
	DemoAttended    DemoStatus = "Attended"
	DemoNotAttended DemoStatus = "Not Attended"
)

// DemoStatuses lists every accepted demo status.
var DemoStatuses = []DemoStatus{DemoRegistered, DemoAttended, DemoNotAttended}

// EnrollmentStatus tracks whether the student enrolled after the demo.
type EnrollmentStatus string

const (
	Enrolled    EnrollmentStatus = "Enrolled"
	NotEnrolled EnrollmentStatus = "Not Enrolled"
)

// EnrollmentStatuses lists every accepted enrollment status.
var EnrollmentStatuses = []EnrollmentStatus{Enrolled, NotEnrolled}

// PaymentStatus tracks fee payment.
type PaymentStatus string

const (
	PaymentFull         PaymentStatus = "Full Paid"
	PaymentRegistration PaymentStatus = "Registration Paid"
	PaymentNone         PaymentStatus = "Not Paid"
)

// PaymentStatuses lists every accepted payment status.
var PaymentStatuses = []PaymentStatus{PaymentFull, PaymentRegistration, PaymentNone}

func (b Board) Valid() bool            { return contains(Boards, b) }
func (c ClassCompleted) Valid() bool   { return contains(Classes, c) }
func (d DemoStatus) Valid() bool       { return contains(DemoStatuses, d) }
func (e EnrollmentStatus) Valid() bool { return contains(EnrollmentStatuses, e) }
func (p PaymentStatus) Valid() bool    { return contains(PaymentStatuses, p) }

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Columns is the persisted column order. It is part of the storage format.
var Columns = []string{
	"id", "fullName", "email", "phone", "board", "classCompleted",
	"demoStatus", "enrollmentStatus", "paymentStatus", "registrationDate",
}

// Registration is one student's registration entry.
type Registration struct {
	ID               string           `json:"id"`
	FullName         string           `json:"fullName"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	Board            Board            `json:"board"`
	ClassCompleted   ClassCompleted   `json:"classCompleted"`
	DemoStatus       DemoStatus       `json:"demoStatus"`
	EnrollmentStatus EnrollmentStatus `json:"enrollmentStatus"`
	PaymentStatus    PaymentStatus    `json:"paymentStatus"`
	RegistrationDate time.Time        `json:"registrationDate"`
}

// Values returns the record's fields as strings in Columns order.
func (r Registration) Values() []string {
	return []string{
		r.ID,
		r.FullName,
		r.Email,
		r.Phone,
		string(r.Board),
		string(r.ClassCompleted),
		string(r.DemoStatus),
		string(r.EnrollmentStatus),
		string(r.PaymentStatus),
		r.RegistrationDate.UTC().Format(TimestampLayout),
	}
}

// RecordView is the outbound shape of a registration: the record plus its display ID.
type RecordView struct {
	Registration
	StudentID string `json:"studentId"`
}

// View attaches the derived display ID to r.
func View(r Registration) RecordView {
	return RecordView{Registration: r, StudentID: DisplayID(r.ID)}
}

// CreateInput carries the fields supplied by the public registration form.
type CreateInput struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Board          string `json:"board"`
	ClassCompleted string `json:"classCompleted"`
}

// StatusUpdate holds the mutable status fields. Nil fields are left unchanged.
type StatusUpdate struct {
	DemoStatus       *DemoStatus       `json:"demoStatus,omitempty"`
	EnrollmentStatus *EnrollmentStatus `json:"enrollmentStatus,omitempty"`
	PaymentStatus    *PaymentStatus    `json:"paymentStatus,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u StatusUpdate) Empty() bool {
	return u.DemoStatus == nil && u.EnrollmentStatus == nil && u.PaymentStatus == nil
}

// Filter selects registrations for listing.
type Filter struct {
	Search           string
	DemoStatus       string
	EnrollmentStatus string
	PaymentStatus    string
	Page             int
	Limit            int
}

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Pagination describes the page returned by a query.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Page is a paginated query result.
type Page struct {
	Records    []Registration
	Pagination Pagination
}

// Stats is the status breakdown of the whole dataset.
// Values never observed are absent from the maps.
type Stats struct {
	Total            int            `json:"total"`
	DemoStatus       map[string]int `json:"demoStatus"`
	EnrollmentStatus map[string]int `json:"enrollmentStatus"`
	PaymentStatus    map[string]int `json:"paymentStatus"`
}

// Backend persists the full dataset. Save must replace the stored dataset
// atomically: after a failed Save the previous dataset is still intact.
type Backend interface {
	Load(ctx context.Context) ([]Registration, error)
	Save(ctx context.Context, records []Registration) error
	Name() string
}

// Observer receives store operation telemetry.
type Observer interface {
	ObserveOperation(op string, d time.Duration, err error)
	ObserveSize(n int)
}
