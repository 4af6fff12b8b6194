package port

import (
	"context"
	"io"
)

// UploadInput describes a single object to write. Invoice archives are small
// JSON payloads, so no multipart handling is required of implementations.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput reports where the object landed.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage archives finalized invoice payloads and hands out short-lived
// download links for them. A nil ObjectStorage disables archival.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
