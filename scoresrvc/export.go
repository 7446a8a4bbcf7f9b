package scoresrvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/qacker/backend/logger"
)

type ReportUploader interface {
	Upload(ctx context.Context, content []byte, key string, mediaType string) (string, error)
}

const ReportMediaType = "application/zstd"

// ExportPerformance uploads a zstd-compressed JSON snapshot of the
// performance rows and returns the object's URL.
func (s *ScoreSrvc) ExportPerformance(ctx context.Context, uploader ReportUploader) (string, error) {
	rows, err := s.Performance(ctx)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal performance report: %w", err)
	}

	compressed, err := CompressReport(raw)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reports/performance-%s.json.zst", s.now().UTC().Format(time.RFC3339))
	url, err := uploader.Upload(ctx, compressed, key, ReportMediaType)
	if err != nil {
		return "", fmt.Errorf("failed to upload performance report: %w", err)
	}

	logger.FromContext(ctx).Info("performance report exported",
		slog.String("key", key),
		slog.Int("rows", len(rows)),
		slog.Int("raw_bytes", len(raw)),
		slog.Int("compressed_bytes", len(compressed)))

	return url, nil
}

func CompressReport(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
}

func DecompressReport(compressed []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress report: %w", err)
	}
	return raw, nil
}
