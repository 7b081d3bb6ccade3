package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const reportContentType = "application/json"

// ReportStore persists rescore run reports as JSON documents.
type ReportStore struct {
	storage StorageService
	bucket  string
}

func NewReportStore(storage StorageService, bucket string) *ReportStore {
	return &ReportStore{storage: storage, bucket: bucket}
}

// Ensure creates the reports bucket on first use.
func (r *ReportStore) Ensure(ctx context.Context) error {
	return r.storage.EnsureBucketExists(ctx, r.bucket)
}

// Save marshals report and stores it under rescore/YYYY/MM/DD/<stamp>.json.
func (r *ReportStore) Save(ctx context.Context, startedAt time.Time, report any) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	startedAt = startedAt.UTC()
	folder := "rescore/" + startedAt.Format("2006/01/02")
	name := startedAt.Format("20060102T150405Z") + ".json"

	return r.storage.UploadFile(ctx, r.bucket, folder, name, reportContentType, bytes.NewReader(data), int64(len(data)))
}
