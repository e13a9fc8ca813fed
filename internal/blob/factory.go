package blob

import (
	"context"
	"fmt"
	"os"

	fsstore "annotcore/internal/infra/blob/fs"
	memorystore "annotcore/internal/infra/blob/memory"
	s3store "annotcore/internal/infra/blob/s3"
)

// NewMemory returns an in-memory blob Store suitable for tests.
func NewMemory() Store { return memorystore.New() }

// NewFilesystem returns a filesystem blob Store rooted at path.
func NewFilesystem(root string) (Store, error) { return fsstore.New(root) }

// NewS3 returns an S3-backed blob Store from explicit configuration.
func NewS3(ctx context.Context, cfg s3store.Config) (Store, error) { return s3store.New(ctx, cfg) }

// Open selects a blob Store implementation using environment variables.
//
//	ANNOTCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	ANNOTCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3 specific variables documented in the s3 driver package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("ANNOTCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("ANNOTCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return s3store.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
