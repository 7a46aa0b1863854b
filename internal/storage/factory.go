package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ai4biz/portal/internal/config"
	"github.com/ai4biz/portal/internal/core"
)

// Backend is a core.Backend that owns resources released on shutdown.
type Backend interface {
	core.Backend
	io.Closer
}

// BackupPrefix is the key prefix for backups kept next to an S3 dataset.
const BackupPrefix = "backups/"

// Open constructs the backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile, "":
		dir, name := filepath.Split(cfg.Storage.Path)
		fs, err := NewFilesystem(dir)
		if err != nil {
			return nil, err
		}
		return NewBlobBackend(fs, name), nil

	case config.DriverS3:
		s3, err := NewS3(ctx, s3Config(cfg.Storage.S3))
		if err != nil {
			return nil, err
		}
		return NewBlobBackend(s3, cfg.Storage.S3.Key), nil

	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.Storage.SQLitePath)

	case config.DriverPostgres:
		return OpenPostgres(ctx, PostgresConfig{
			URL:             cfg.Database.URL,
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})

	case config.DriverMemory:
		return NewBlobBackend(NewMemory(), "registrations.xlsx"), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// OpenBackupTarget returns where backups are written and the key prefix to
// use: the dataset bucket under BackupPrefix for the s3 driver, otherwise
// the local backup directory.
func OpenBackupTarget(ctx context.Context, cfg *config.Config) (Blob, string, error) {
	if cfg.Storage.Driver == config.DriverS3 {
		s3, err := NewS3(ctx, s3Config(cfg.Storage.S3))
		if err != nil {
			return nil, "", err
		}
		return s3, BackupPrefix, nil
	}
	fs, err := NewFilesystem(cfg.Backup.Dir)
	if err != nil {
		return nil, "", err
	}
	return fs, "", nil
}

func s3Config(c config.S3Config) S3Config {
	return S3Config{
		Bucket:          c.Bucket,
		Region:          c.Region,
		Endpoint:        c.Endpoint,
		PathStyle:       c.PathStyle,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
	}
}
