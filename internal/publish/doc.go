// Package publish copies snapshot artifacts into object storage.
//
// Storage is addressed by gocloud.dev bucket URLs (s3://, gs://, file://),
// so the destination is provider-agnostic. Publishing is optional: the
// pipeline only invokes it when a bucket was configured.
package publish
