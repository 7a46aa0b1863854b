package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ai4biz/portal/internal/core"
)

// BlobBackend persists the dataset as a single workbook object.
type BlobBackend struct {
	blob Blob
	key  string
}

var _ core.Backend = (*BlobBackend)(nil)

// NewBlobBackend stores the dataset under key in blob.
func NewBlobBackend(blob Blob, key string) *BlobBackend {
	return &BlobBackend{blob: blob, key: key}
}

func (b *BlobBackend) Name() string { return b.blob.Driver() + ":" + b.key }

// Load reads the workbook. A missing object is an empty dataset; an
// unreadable one is an error, never silently empty.
func (b *BlobBackend) Load(ctx context.Context) ([]core.Registration, error) {
	data, err := b.blob.Get(ctx, b.key)
	if errors.Is(err, ErrNotFound) {
		return []core.Registration{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.key, err)
	}
	records, err := DecodeWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.key, err)
	}
	return records, nil
}

// Save encodes records and replaces the stored workbook.
func (b *BlobBackend) Save(ctx context.Context, records []core.Registration) error {
	data, err := EncodeWorkbook(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", b.key, err)
	}
	return b.blob.Put(ctx, b.key, data, WorkbookContentType)
}

// Close is a no-op; blobs hold no long-lived handles.
func (b *BlobBackend) Close() error { return nil }
