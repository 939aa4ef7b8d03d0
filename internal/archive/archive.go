// Package archive exports standings and pairings snapshots to an
// S3-compatible bucket.
package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"

	"github.com/albapepper/swiss-tournament/internal/config"
	"github.com/albapepper/swiss-tournament/internal/swiss"
)

// TimestampLayout names the per-snapshot directory.
const TimestampLayout = "20060102T150405Z"

// ObjectPutter is the part of *s3.Client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Source supplies the standings to snapshot. Pairings are derived from the
// same read so both objects describe one moment.
type Source interface {
	Standings(ctx context.Context) ([]swiss.Standing, error)
}

// Exporter writes snapshots to a bucket.
type Exporter struct {
	client ObjectPutter
	source Source
	bucket string
	gzip   bool
	logger *slog.Logger
	now    func() time.Time
}

// NewExporter creates an Exporter. A nil logger uses slog.Default.
func NewExporter(client ObjectPutter, source Source, bucket string, gzip bool, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		client: client,
		source: source,
		bucket: bucket,
		gzip:   gzip,
		logger: logger,
		now:    time.Now,
	}
}

// NewS3Client builds an S3 client from the archive settings. A custom
// endpoint switches to path-style addressing for MinIO and R2.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.ArchiveRegion),
	}
	if cfg.ArchiveAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.ArchiveAccessKey, cfg.ArchiveSecretKey, "")))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.ArchiveEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.ArchiveEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type object struct {
	name  string
	value any
}

// Export snapshots standings and pairings under <prefix>/<timestamp>/.
// Standings are read once and pairings computed from them; the two objects
// are then uploaded concurrently and the first failure cancels the other.
func (e *Exporter) Export(ctx context.Context, prefix string) (Result, error) {
	start := e.now()
	dir := path.Join(strings.Trim(prefix, "/"), start.UTC().Format(TimestampLayout))

	result := Result{Bucket: e.bucket, Prefix: dir}
	st, err := e.source.Standings(ctx)
	if err != nil {
		err = fmt.Errorf("load standings: %w", err)
		result.AddError(err.Error())
		return result, err
	}
	objects := []object{
		{name: "standings", value: st},
		{name: "pairings", value: swiss.Pair(swiss.FromStandings(st))},
	}

	keys := make([]string, len(objects))
	sizes := make([]int, len(objects))
	g, gctx := errgroup.WithContext(ctx)
	for i, obj := range objects {
		g.Go(func() error {
			key, n, err := e.put(gctx, dir, obj.name, obj.value)
			if err != nil {
				return err
			}
			keys[i], sizes[i] = key, n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		result.AddError(err.Error())
		return result, err
	}
	for i := range objects {
		result.Add(keys[i], sizes[i])
	}
	result.Duration = e.now().Sub(start)

	e.logger.Info("Snapshot exported", "bucket", e.bucket, "summary", result.Summary())
	return result, nil
}

func (e *Exporter) put(ctx context.Context, dir, name string, v any) (string, int, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", 0, fmt.Errorf("encode %s: %w", name, err)
	}

	key := path.Join(dir, name+".json")
	in := &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		ContentType: aws.String("application/json"),
	}
	if e.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(body); err != nil {
			return "", 0, fmt.Errorf("gzip %s: %w", name, err)
		}
		if err := gw.Close(); err != nil {
			return "", 0, fmt.Errorf("gzip %s: %w", name, err)
		}
		body = buf.Bytes()
		key += ".gz"
		in.ContentEncoding = aws.String("gzip")
	}
	in.Key = aws.String(key)
	in.Body = bytes.NewReader(body)

	if _, err := e.client.PutObject(ctx, in); err != nil {
		return "", 0, fmt.Errorf("put %s/%s: %w", e.bucket, key, describe(err))
	}
	return key, len(body), nil
}

// describe surfaces the service error code when the SDK provides one.
func describe(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	return err
}
