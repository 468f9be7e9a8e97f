// Package minio provides a MinIO (S3-compatible) implementation of
// filestore.Sink.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin", "dumps")
//	sink, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	err = filestore.WriteRecords(ctx, sink, filestore.DefaultName, records)
package minio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/koustreak/metadump/internal/errs"
	"github.com/koustreak/metadump/internal/filestore"
	"github.com/koustreak/metadump/internal/logger"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Driver uploads documents to one bucket.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
	cfg    filestore.Config
}

// New connects to MinIO using the provided Config and returns a Driver.
// The bucket is created when it does not exist yet.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to create minio client", err)
	}

	d := &Driver{client: client, cfg: *cfg}

	if err := d.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Driver) ensureBucket(ctx context.Context) error {
	exists, err := d.client.BucketExists(ctx, d.cfg.Bucket)
	if err != nil {
		return mapError(err, "failed to check bucket")
	}
	if exists {
		return nil
	}

	logger.FromContext(ctx).Infof("creating bucket %s", d.cfg.Bucket)
	err = d.client.MakeBucket(ctx, d.cfg.Bucket, miniogo.MakeBucketOptions{Region: d.cfg.Region})
	if err != nil {
		return mapError(err, "failed to create bucket")
	}
	return nil
}

// --- filestore.Sink implementation ---

// Put uploads body as a single object, replacing any previous version.
func (d *Driver) Put(ctx context.Context, name string, body []byte) error {
	key := d.cfg.Key(name)

	info, err := d.client.PutObject(ctx, d.cfg.Bucket, key, bytes.NewReader(body), int64(len(body)),
		miniogo.PutObjectOptions{ContentType: filestore.ContentTypeJSON})
	if err != nil {
		return mapError(err, "failed to upload object")
	}

	logger.FromContext(ctx).Debugf("uploaded %s (%d bytes, etag %s)", key, info.Size, info.ETag)
	return nil
}

// Location returns the object URL, e.g. http://localhost:9000/dumps/metadata.json
func (d *Driver) Location(name string) string {
	scheme := "http"
	if d.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, d.cfg.Endpoint, d.cfg.Bucket, d.cfg.Key(name))
}
