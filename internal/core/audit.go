package core

import (
	"context"
	"log/slog"

	"github.com/ai4biz/portal/internal/logging"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionRegistrationCreate AuditAction = "registration_create"
	ActionStatusUpdate       AuditAction = "status_update"
	ActionRegistrationDelete AuditAction = "registration_delete"
	ActionDatasetReload      AuditAction = "dataset_reload"
	ActionExportDownload     AuditAction = "export_download"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditLogParams contains parameters for an audit log entry.
// IP address, user agent and actor are taken from context when empty.
type AuditLogParams struct {
	Action       AuditAction
	RecordID     string
	Actor        string
	IPAddress    string
	UserAgent    string
	Changes      map[string]string
	RowsAffected int
	Reason       string
}

// severityFor returns the default severity for an action.
func severityFor(action AuditAction) AuditSeverity {
	switch action {
	case ActionRegistrationDelete, ActionDatasetReload:
		return SeverityHigh
	case ActionStatusUpdate:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// LogAudit records an audit entry as a structured log line.
// Audit logging never fails the operation it describes.
func LogAudit(ctx context.Context, p AuditLogParams) {
	if p.IPAddress == "" {
		p.IPAddress = GetIPAddressFromContext(ctx)
	}
	if p.UserAgent == "" {
		p.UserAgent = GetUserAgentFromContext(ctx)
	}
	if p.Actor == "" {
		p.Actor = GetActorFromContext(ctx)
	}

	attrs := []any{
		"action", string(p.Action),
		"severity", string(severityFor(p.Action)),
	}
	if p.RecordID != "" {
		attrs = append(attrs, "record_id", p.RecordID, "student_id", DisplayID(p.RecordID))
	}
	if p.Actor != "" {
		attrs = append(attrs, "actor", p.Actor)
	}
	if p.IPAddress != "" {
		attrs = append(attrs, "ip", p.IPAddress)
	}
	if p.UserAgent != "" {
		attrs = append(attrs, "user_agent", p.UserAgent)
	}
	if len(p.Changes) > 0 {
		attrs = append(attrs, "changes", p.Changes)
	}
	if p.RowsAffected > 0 {
		attrs = append(attrs, "rows_affected", p.RowsAffected)
	}
	if p.Reason != "" {
		attrs = append(attrs, "reason", p.Reason)
	}

	logging.FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, "audit", slog.Group("audit", attrs...))
}
