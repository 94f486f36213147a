package backup

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/alnah/go-catalog2pdf/internal/fileutil"
)

// objectStore is the subset of *minio.Client used for uploads.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinIOOptions configures a MinIOArchiver.
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Prefix    string // Object key prefix, default "backup/"
}

// MinIOArchiver uploads outputs to a bucket and removes the local file
// once the upload succeeds.
type MinIOArchiver struct {
	client objectStore
	bucket string
	prefix string
	now    func() time.Time
}

// NewMinIOArchiver creates an archiver with a MinIO client for opts.
func NewMinIOArchiver(opts MinIOOptions) (*MinIOArchiver, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return newMinIOArchiver(client, opts.Bucket, opts.Prefix), nil
}

func newMinIOArchiver(client objectStore, bucket, prefix string) *MinIOArchiver {
	if prefix == "" {
		prefix = "backup/"
	}
	return &MinIOArchiver{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// EnsureBucket creates the bucket if it doesn't exist.
func (a *MinIOArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Archive uploads path as <prefix><name>-<timestamp><ext> and deletes it.
// The returned location is "<bucket>/<key>".
func (a *MinIOArchiver) Archive(ctx context.Context, filePath string) (string, error) {
	if !fileutil.FileExists(filePath) {
		return "", nil
	}

	key := path.Join(a.prefix, fileutil.TimestampedName(filePath, a.now()))
	_, err := a.client.FPutObject(ctx, a.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("%w: uploading %s: %v", ErrArchive, key, err)
	}
	if err := os.Remove(filePath); err != nil {
		return "", fmt.Errorf("%w: removing %s after upload: %v", ErrArchive, filePath, err)
	}
	return a.bucket + "/" + key, nil
}
