package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ignite/cad-normalizer/internal/config"
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
)

const (
	processedPrefix  = "processed/"
	normalizedPrefix = "normalized/"
	failedPrefix     = "failed/"
)

// Watcher polls an S3 bucket for new CAD export files, transforms each
// with the best stored template, writes the canonical CSV under
// normalized/, and moves the original under processed/ (failed/ when no
// template matches).
type Watcher struct {
	s3Client  *s3.Client
	bucket    string
	processor *Processor
	interval  time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	lastRunAt time.Time
	healthy   bool
	running   int32
}

// NewWatcher builds a watcher from ingest config and a processor.
func NewWatcher(ctx context.Context, cfg config.IngestConfig, processor *Processor) (*Watcher, error) {
	var awsCfg aws.Config
	var err error
	if cfg.AWSProfile != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithSharedConfigProfile(cfg.AWSProfile),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.S3Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Watcher{
		s3Client:  s3.NewFromConfig(awsCfg),
		bucket:    cfg.S3Bucket,
		processor: processor,
		interval:  interval,
		healthy:   true,
	}, nil
}

// Start launches the polling loop in the background.
func (w *Watcher) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	go func() {
		w.runOnce()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runOnce()
			}
		}
	}()
}

// Stop cancels the polling loop.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Watcher) IsHealthy() bool      { return w.healthy }
func (w *Watcher) LastRunAt() time.Time { return w.lastRunAt }
func (w *Watcher) IsRunning() bool      { return atomic.LoadInt32(&w.running) == 1 }

// runOnce executes one cycle: list the bucket, process every new export.
func (w *Watcher) runOnce() {
	if !atomic.CompareAndSwapInt32(&w.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&w.running, 0)

	ctx := w.ctx
	w.lastRunAt = time.Now()
	w.healthy = true

	paginator := s3.NewListObjectsV2Paginator(w.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(w.bucket),
	})

	for paginator.HasMorePages() {
		if ctx.Err() != nil {
			return
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logger.Error("list S3 objects failed", "bucket", w.bucket, "error", err.Error())
			w.healthy = false
			return
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if obj.Size == nil || *obj.Size == 0 {
				continue
			}
			if strings.HasPrefix(key, processedPrefix) ||
				strings.HasPrefix(key, normalizedPrefix) ||
				strings.HasPrefix(key, failedPrefix) {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(key), ".csv") {
				continue
			}
			if err := w.processObject(ctx, key); err != nil {
				logger.Error("process export failed", "key", key, "error", err.Error())
				w.healthy = false
			}
		}
	}
}

// processObject downloads one export, transforms it, uploads the result,
// and renames the original so it is not picked up again.
func (w *Watcher) processObject(ctx context.Context, key string) error {
	logger.Info("processing export", "key", key)

	obj, err := w.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get S3 object: %w", err)
	}
	defer obj.Body.Close()

	result, err := w.processor.Process(ctx, obj.Body)
	if errors.Is(err, ErrNoTemplate) {
		logger.Warn("no template matched export", "key", key)
		return w.rename(ctx, key, failedPrefix+key)
	}
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := WriteRows(&out, result.Rows); err != nil {
		return fmt.Errorf("render normalized CSV: %w", err)
	}

	normKey := normalizedPrefix + strings.TrimSuffix(path.Base(key), path.Ext(key)) + ".csv"
	_, err = w.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(normKey),
		Body:        bytes.NewReader(out.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("upload normalized CSV: %w", err)
	}

	logger.Info("export normalized",
		"key", key, "normalized_key", normKey,
		"vendor", result.Vendor, "template_id", result.TemplateID, "rows", len(result.Rows))

	return w.rename(ctx, key, processedPrefix+key)
}

// rename copies an object to a new key and deletes the original.
func (w *Watcher) rename(ctx context.Context, from, to string) error {
	_, err := w.s3Client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(w.bucket),
		CopySource: aws.String(w.bucket + "/" + from),
		Key:        aws.String(to),
	})
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", from, to, err)
	}
	_, err = w.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(from),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", from, err)
	}
	return nil
}
