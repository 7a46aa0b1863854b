package core

// store.go implements the Record Store, the sole owner of the registration
// dataset.
//
// The dataset lives in memory as an immutable slice that is replaced, never
// edited, on every mutation. Mutations are serialized through a single-slot
// semaphore (the critical section) and hold it across the whole
// read-modify-write-persist cycle:
//
//  1. read the current slice
//  2. build the next slice (copy-on-write)
//  3. persist the next slice through the Backend (atomic replace)
//  4. publish the next slice to readers
//
// If step 3 fails the next slice is discarded, so readers never observe a
// mutation that is not durable. Readers take a short read lock only to grab
// the current slice header.

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ai4biz/portal/internal/logging"
	"github.com/google/uuid"
)

const (
	minNameLength = 2
	maxNameLength = 100
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for registration dates.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id generator (UUIDv4 by default).
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) { s.newID = gen }
}

// WithObserver reports operation telemetry to o.
func WithObserver(o Observer) StoreOption {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// Store is the Record Store. Construct one per process with Open and pass it
// explicitly to every consumer.
type Store struct {
	backend  Backend
	writeSem chan struct{}

	mu      sync.RWMutex
	records []Registration

	now      func() time.Time
	newID    func() string
	observer Observer
}

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, time.Duration, error) {}
func (noopObserver) ObserveSize(int)                               {}

// Open loads the persisted dataset from backend and returns a ready Store.
func Open(ctx context.Context, backend Backend, opts ...StoreOption) (*Store, error) {
	s := &Store{
		backend:  backend,
		writeSem: make(chan struct{}, 1),
		now:      time.Now,
		newID:    uuid.NewString,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}

	records, err := backend.Load(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	s.records = records
	s.observer.ObserveSize(len(records))
	return s, nil
}

// StorageName returns the name of the configured backend.
func (s *Store) StorageName() string {
	return s.backend.Name()
}

// lock enters the critical section, giving up if ctx ends first.
func (s *Store) lock(ctx context.Context) error {
	select {
	case s.writeSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlock() {
	<-s.writeSem
}

// current returns the published dataset. The slice must not be modified.
func (s *Store) current() []Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// commit persists next and publishes it. Persistence ignores cancellation of
// ctx: once a write has started it runs to completion or fails atomically.
func (s *Store) commit(ctx context.Context, op string, next []Registration) error {
	if err := s.backend.Save(context.WithoutCancel(ctx), next); err != nil {
		logging.FromContext(ctx).Error("dataset persist failed",
			"op", op,
			"backend", s.backend.Name(),
			"error", err,
		)
		return &PersistenceError{Op: op, Err: err}
	}

	s.mu.Lock()
	s.records = next
	s.mu.Unlock()

	s.observer.ObserveSize(len(next))
	return nil
}

func (s *Store) observe(op string, start time.Time, err *error) {
	s.observer.ObserveOperation(op, time.Since(start), *err)
}

// normalizeEmail trims and lower-cases an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizePhone trims a phone number.
func normalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

// buildRecord normalizes in and checks the field constraints the store relies on.
func buildRecord(in CreateInput) (Registration, error) {
	rec := Registration{
		FullName:         strings.TrimSpace(in.FullName),
		Email:            normalizeEmail(in.Email),
		Phone:            normalizePhone(in.Phone),
		Board:            Board(strings.TrimSpace(in.Board)),
		ClassCompleted:   ClassCompleted(strings.TrimSpace(in.ClassCompleted)),
		DemoStatus:       DemoRegistered,
		EnrollmentStatus: NotEnrolled,
		PaymentStatus:    PaymentNone,
	}

	if n := utf8.RuneCountInString(rec.FullName); n < minNameLength || n > maxNameLength {
		return Registration{}, &ValidationError{Field: "fullName", Message: "Full name must be 2-100 characters"}
	}
	if rec.Email == "" {
		return Registration{}, &ValidationError{Field: "email", Message: "Email is required"}
	}
	if rec.Phone == "" {
		return Registration{}, &ValidationError{Field: "phone", Message: "Phone number is required"}
	}
	if !rec.Board.Valid() {
		return Registration{}, &ValidationError{Field: "board", Message: "Please select a valid board"}
	}
	if !rec.ClassCompleted.Valid() {
		return Registration{}, &ValidationError{Field: "classCompleted", Message: "Please select a valid class"}
	}
	return rec, nil
}

// findDuplicate returns the index of the first record sharing the normalized
// email or phone, or -1. Empty probes never match.
func findDuplicate(records []Registration, email, phone string) int {
	for i, r := range records {
		if email != "" && r.Email == email {
			return i
		}
		if phone != "" && r.Phone == phone {
			return i
		}
	}
	return -1
}

func indexByID(records []Registration, id string) int {
	return slices.IndexFunc(records, func(r Registration) bool { return r.ID == id })
}

// FindDuplicate normalizes email and phone and returns the first record that
// shares either of them.
func (s *Store) FindDuplicate(email, phone string) (Registration, bool) {
	records := s.current()
	if i := findDuplicate(records, normalizeEmail(email), normalizePhone(phone)); i >= 0 {
		return records[i], true
	}
	return Registration{}, false
}

// Create normalizes in, assigns a fresh id and default statuses, and appends
// the record. The duplicate check and the insert run in the same critical
// section, so two racing creates with the same email cannot both succeed.
func (s *Store) Create(ctx context.Context, in CreateInput) (rec Registration, err error) {
	defer s.observe("create", time.Now(), &err)

	rec, err = buildRecord(in)
	if err != nil {
		return Registration{}, err
	}

	if err = s.lock(ctx); err != nil {
		return Registration{}, err
	}
	defer s.unlock()

	cur := s.current()
	if i := findDuplicate(cur, rec.Email, rec.Phone); i >= 0 {
		field := "phone"
		if cur[i].Email == rec.Email {
			field = "email"
		}
		err = &DuplicateError{Field: field}
		return Registration{}, err
	}

	rec.ID = s.uniqueID(cur)
	rec.RegistrationDate = s.now().UTC().Truncate(time.Millisecond)

	next := make([]Registration, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, rec)

	if err = s.commit(ctx, "create", next); err != nil {
		return Registration{}, err
	}

	LogAudit(ctx, AuditLogParams{
		Action:       ActionRegistrationCreate,
		RecordID:     rec.ID,
		RowsAffected: 1,
	})
	return rec, nil
}

// uniqueID draws ids until one is not already in use.
func (s *Store) uniqueID(records []Registration) string {
	for {
		id := s.newID()
		if indexByID(records, id) < 0 {
			return id
		}
		slog.Warn("generated registration id collided, retrying", "id", id)
	}
}

// validateUpdate rejects status values outside their enums.
func validateUpdate(u StatusUpdate) error {
	if u.DemoStatus != nil && !u.DemoStatus.Valid() {
		return &ValidationError{Field: "demoStatus", Message: "invalid enum value " + fmt.Sprintf("%q", *u.DemoStatus)}
	}
	if u.EnrollmentStatus != nil && !u.EnrollmentStatus.Valid() {
		return &ValidationError{Field: "enrollmentStatus", Message: "invalid enum value " + fmt.Sprintf("%q", *u.EnrollmentStatus)}
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return &ValidationError{Field: "paymentStatus", Message: "invalid enum value " + fmt.Sprintf("%q", *u.PaymentStatus)}
	}
	return nil
}

// applyUpdate copies the present fields of u onto r and returns the changes.
func applyUpdate(r *Registration, u StatusUpdate) map[string]string {
	changes := make(map[string]string)
	if u.DemoStatus != nil && *u.DemoStatus != r.DemoStatus {
		changes["demoStatus"] = string(r.DemoStatus) + " -> " + string(*u.DemoStatus)
		r.DemoStatus = *u.DemoStatus
	}
	if u.EnrollmentStatus != nil && *u.EnrollmentStatus != r.EnrollmentStatus {
		changes["enrollmentStatus"] = string(r.EnrollmentStatus) + " -> " + string(*u.EnrollmentStatus)
		r.EnrollmentStatus = *u.EnrollmentStatus
	}
	if u.PaymentStatus != nil && *u.PaymentStatus != r.PaymentStatus {
		changes["paymentStatus"] = string(r.PaymentStatus) + " -> " + string(*u.PaymentStatus)
		r.PaymentStatus = *u.PaymentStatus
	}
	return changes
}

// UpdateStatus applies the present status fields of u to the record with id.
// An update that changes nothing succeeds without touching storage.
func (s *Store) UpdateStatus(ctx context.Context, id string, u StatusUpdate) (rec Registration, err error) {
	defer s.observe("update_status", time.Now(), &err)

	if err = validateUpdate(u); err != nil {
		return Registration{}, err
	}

	if err = s.lock(ctx); err != nil {
		return Registration{}, err
	}
	defer s.unlock()

	cur := s.current()
	idx := indexByID(cur, id)
	if idx < 0 {
		err = &NotFoundError{ID: id}
		return Registration{}, err
	}

	updated := cur[idx]
	changes := applyUpdate(&updated, u)
	if len(changes) == 0 {
		return updated, nil
	}

	next := slices.Clone(cur)
	next[idx] = updated
	if err = s.commit(ctx, "update_status", next); err != nil {
		return Registration{}, err
	}

	LogAudit(ctx, AuditLogParams{
		Action:       ActionStatusUpdate,
		RecordID:     id,
		Changes:      changes,
		RowsAffected: 1,
	})
	return updated, nil
}

// Delete permanently removes the record with id.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	if err = s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	cur := s.current()
	idx := indexByID(cur, id)
	if idx < 0 {
		err = &NotFoundError{ID: id}
		return err
	}

	next := make([]Registration, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	if err = s.commit(ctx, "delete", next); err != nil {
		return err
	}

	LogAudit(ctx, AuditLogParams{
		Action:       ActionRegistrationDelete,
		RecordID:     id,
		RowsAffected: 1,
	})
	return nil
}

// Reload re-reads the dataset from storage, replacing the in-memory copy.
func (s *Store) Reload(ctx context.Context) (err error) {
	defer s.observe("reload", time.Now(), &err)

	if err = s.lock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	records, loadErr := s.backend.Load(ctx)
	if loadErr != nil {
		err = &PersistenceError{Op: "load", Err: loadErr}
		return err
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	s.observer.ObserveSize(len(records))

	LogAudit(ctx, AuditLogParams{
		Action:       ActionDatasetReload,
		RowsAffected: len(records),
	})
	return nil
}

// Get returns the record with id.
func (s *Store) Get(id string) (Registration, error) {
	records := s.current()
	if idx := indexByID(records, id); idx >= 0 {
		return records[idx], nil
	}
	return Registration{}, &NotFoundError{ID: id}
}

// Snapshot returns a copy of the full dataset in insertion order.
func (s *Store) Snapshot() []Registration {
	return slices.Clone(s.current())
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.current())
}

// List returns every record matching f, newest first, ignoring paging.
func (s *Store) List(f Filter) []Registration {
	return Select(s.current(), f)
}

// Query returns one page of records matching f.
func (s *Store) Query(f Filter) Page {
	return Query(s.current(), f)
}

// Stats returns the status breakdown of the full dataset.
func (s *Store) Stats() Stats {
	return ComputeStats(s.current())
}
