// Package filestore defines where a metadata dump is written.
//
// Every destination (local directory, MinIO / S3 bucket) implements Sink.
// Callers depend only on this package, never on a specific provider package.
//
// Usage:
//
//	sink, err := local.New(".")
//	if err != nil { ... }
//	if err := filestore.WriteRecords(ctx, sink, filestore.DefaultName, records); err != nil { ... }
package filestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/koustreak/metadump/internal/catalog"
	"github.com/koustreak/metadump/internal/errs"
)

// DefaultName is the document name used when none is configured.
const DefaultName = "metadata.json"

// ContentTypeJSON is the media type of an encoded dump.
const ContentTypeJSON = "application/json"

// Sink is the single interface all output destinations implement.
type Sink interface {
	// Put stores body under name, replacing whatever was there before.
	Put(ctx context.Context, name string, body []byte) error

	// Location describes where name ends up, for the operator.
	Location(name string) string
}

// Encode renders records as one compact JSON array. A nil or empty slice
// encodes as [].
func Encode(records []catalog.Record) ([]byte, error) {
	if records == nil {
		records = []catalog.Record{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindWriteFailed, "failed to encode records", err)
	}
	return body, nil
}

// WriteRecords encodes records and stores them in sink under name.
func WriteRecords(ctx context.Context, sink Sink, name string, records []catalog.Record) error {
	body, err := Encode(records)
	if err != nil {
		return err
	}
	if err := sink.Put(ctx, name, body); err != nil {
		return fmt.Errorf("write %s: %w", sink.Location(name), err)
	}
	return nil
}
