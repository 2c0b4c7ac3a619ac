package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"gocloud.dev/blob"
)

// Publish copies a finished snapshot artifact into object storage.
// An empty object name defaults to the artifact's file name.
func Publish(ctx context.Context, bucketURL, object, artifactPath string) error {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return fmt.Errorf("publish: open bucket: %w", err)
	}
	defer bucket.Close()

	return PublishToBucket(ctx, bucket, object, artifactPath)
}

// PublishToBucket copies the artifact into an existing bucket handle.
// The blob writer commits only on Close, so a failed copy leaves no
// partial object behind.
func PublishToBucket(ctx context.Context, bucket *blob.Bucket, object, artifactPath string) error {
	if object == "" {
		object = path.Base(artifactPath)
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("publish: open artifact: %w", err)
	}
	defer f.Close()

	w, err := bucket.NewWriter(ctx, object, nil)
	if err != nil {
		return fmt.Errorf("publish: create object %s: %w", object, err)
	}

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("publish: copy artifact: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("publish: commit object %s: %w", object, err)
	}

	return nil
}
