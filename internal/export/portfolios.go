// Package export snapshots the portfolio table to S3 as Parquet.
package export

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portfolio-api/internal/config"
	"portfolio-api/internal/portfolio"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

// PortfolioRow is one Parquet row.
type PortfolioRow struct {
	ID          string   `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN"`
	Name        string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN"`
	Description string   `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN"`
	Skills      []string `parquet:"name=skills, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REPEATED"`
	CreatedAt   string   `parquet:"name=created_at, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN"`
	UpdatedAt   string   `parquet:"name=updated_at, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN"`
}

func rowOf(p portfolio.Portfolio) PortfolioRow {
	return PortfolioRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Skills:      p.Skills,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Scanner walks every stored record. *db.PortfolioStore implements it.
type Scanner interface {
	ScanEach(ctx context.Context, fn func(portfolio.Portfolio) error) error
}

// S3API is the part of *s3.Client the exporter uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Exporter writes the whole table into a single Parquet object per run.
type Exporter struct {
	scanner Scanner
	s3      S3API
	bucket  string
	prefix  string
	log     *slog.Logger
	now     func() time.Time
}

// NewExporter builds an exporter for cfg.
func NewExporter(scanner Scanner, client S3API, cfg config.ExportConfig, log *slog.Logger) *Exporter {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = config.DefaultExportPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{
		scanner: scanner,
		s3:      client,
		bucket:  strings.TrimSpace(cfg.Bucket),
		prefix:  prefix,
		log:     log,
		now:     time.Now,
	}
}

// Handle is triggered by an EventBridge schedule. It writes
//
//	<prefix>dt=YYYY-MM-DD/portfolios-<rand>.parquet
//
// to the export bucket and returns a run summary.
func (e *Exporter) Handle(ctx context.Context, _ events.CloudWatchEvent) (map[string]any, error) {
	if e.bucket == "" {
		return nil, fmt.Errorf("missing env EXPORT_BUCKET")
	}

	dt := e.now().UTC().Format("2006-01-02")
	key := fmt.Sprintf("%sdt=%s/portfolios-%s.parquet",
		ensureTrailingSlash(e.prefix),
		dt,
		randHex(8),
	)

	rows, err := e.writeParquetToS3(ctx, key)
	if err != nil {
		return nil, err
	}

	e.log.Info("portfolio export written", "bucket", e.bucket, "key", key, "rows", rows)
	return map[string]any{
		"ok":     true,
		"rows":   rows,
		"bucket": e.bucket,
		"key":    key,
	}, nil
}

func (e *Exporter) writeParquetToS3(ctx context.Context, key string) (int, error) {
	localPath := filepath.Join(os.TempDir(), "portfolios_"+randHex(8)+".parquet")
	defer func() { _ = os.Remove(localPath) }()

	fw, err := local.NewLocalFileWriter(localPath)
	if err != nil {
		return 0, fmt.Errorf("parquet file writer: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(PortfolioRow), 1)
	if err != nil {
		_ = fw.Close()
		return 0, fmt.Errorf("parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.PageSize = 8 * 1024
	pw.CompressionType = 0 // uncompressed

	rows := 0
	err = e.scanner.ScanEach(ctx, func(p portfolio.Portfolio) error {
		if err := pw.Write(rowOf(p)); err != nil {
			return fmt.Errorf("parquet write row %s: %w", p.ID, err)
		}
		rows++
		return nil
	})
	if err != nil {
		_ = pw.WriteStop()
		_ = fw.Close()
		return 0, err
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return 0, fmt.Errorf("parquet write stop: %w", err)
	}
	if err := fw.Close(); err != nil {
		return 0, fmt.Errorf("parquet close: %w", err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return 0, fmt.Errorf("read parquet tmp: %w", err)
	}

	_, err = e.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return 0, fmt.Errorf("s3 putobject failed: %w", err)
	}
	return rows, nil
}

func ensureTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
