package storage

// backup.go provides the background backup scheduler.
//
// Each run writes a point-in-time workbook of the dataset and then prunes
// old backups:
//  1. Snapshot the store and encode it as a workbook
//  2. Write it as <prefix>registrations-<timestamp>.xlsx
//  3. Delete the oldest backups beyond the retention count
//
// The scheduler is long-running and context-aware for graceful shutdown.
// It logs failures but never stops the application because of one.

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ai4biz/portal/internal/core"
)

const (
	backupBaseName   = "registrations-"
	backupTimeLayout = "20060102T150405Z"
	backupExt        = ".xlsx"
)

// Snapshotter supplies the dataset to back up.
type Snapshotter interface {
	Snapshot() []core.Registration
}

// BackupConfig holds configuration for the backup scheduler.
// Zero values fall back to defaults.
type BackupConfig struct {
	Interval time.Duration // How often to run (default: 24h)
	Retain   int           // Backups to keep (default: 14)
	Prefix   string        // Key prefix inside the target
}

// BackupScheduler periodically copies the dataset to a Blob.
type BackupScheduler struct {
	source Snapshotter
	target Blob
	cfg    BackupConfig
	now    func() time.Time
}

// NewBackupScheduler returns a scheduler writing snapshots of source to target.
func NewBackupScheduler(source Snapshotter, target Blob, cfg BackupConfig) *BackupScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Retain <= 0 {
		cfg.Retain = 14
	}
	return &BackupScheduler{source: source, target: target, cfg: cfg, now: time.Now}
}

// Start runs a backup immediately, then every Interval, until ctx is cancelled.
func (b *BackupScheduler) Start(ctx context.Context) {
	slog.Info("backup scheduler started",
		"target", b.target.Driver(),
		"interval", b.cfg.Interval.String(),
		"retain", b.cfg.Retain,
	)

	b.runOnce(ctx)

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("backup scheduler stopped")
			return
		case <-ticker.C:
			b.runOnce(ctx)
		}
	}
}

// runOnce performs one backup + prune cycle, logging instead of failing.
func (b *BackupScheduler) runOnce(ctx context.Context) {
	start := time.Now()

	key, err := b.Backup(ctx)
	if err != nil {
		slog.Error("backup failed", "error", err)
		return
	}

	pruned, err := b.Prune(ctx)
	if err != nil {
		slog.Error("backup prune failed", "error", err)
	}

	slog.Info("backup completed",
		"key", key,
		"backups_pruned", pruned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Backup writes one snapshot and returns its key.
func (b *BackupScheduler) Backup(ctx context.Context) (string, error) {
	data, err := EncodeWorkbook(b.source.Snapshot())
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	key := b.cfg.Prefix + backupBaseName + b.now().UTC().Format(backupTimeLayout) + backupExt
	if err := b.target.Put(ctx, key, data, WorkbookContentType); err != nil {
		return "", fmt.Errorf("write backup %s: %w", key, err)
	}
	return key, nil
}

// Prune deletes the oldest backups so that at most Retain remain.
// Backup keys sort chronologically, so key order is age order.
func (b *BackupScheduler) Prune(ctx context.Context) (int, error) {
	objs, err := b.target.List(ctx, b.cfg.Prefix+backupBaseName)
	if err != nil {
		return 0, fmt.Errorf("list backups: %w", err)
	}

	var keys []string
	for _, o := range objs {
		if strings.HasSuffix(o.Key, backupExt) {
			keys = append(keys, o.Key)
		}
	}
	if len(keys) <= b.cfg.Retain {
		return 0, nil
	}
	sort.Strings(keys)

	pruned := 0
	for _, k := range keys[:len(keys)-b.cfg.Retain] {
		if err := b.target.Delete(ctx, k); err != nil {
			return pruned, fmt.Errorf("delete backup %s: %w", k, err)
		}
		pruned++
	}
	return pruned, nil
}
