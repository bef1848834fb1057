package media

import (
	"context"
	"fmt"

	"github.com/Sokol111/ecommerce-catalog-sync/pkg/persistence/minio"
	miniogo "github.com/minio/minio-go/v7"
)

type ObjectStorage interface {
	Delete(ctx context.Context, publicID string) error
}

type objectRemover interface {
	RemoveObject(ctx context.Context, bucketName, objectName string, opts miniogo.RemoveObjectOptions) error
}

type minioStorage struct {
	client objectRemover
	bucket string
}

func newObjectStorage(client *miniogo.Client, conf minio.Config) ObjectStorage {
	return &minioStorage{client: client, bucket: conf.Bucket}
}

// Delete succeeds for an object that is already gone.
func (s *minioStorage) Delete(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s/%s: %w", s.bucket, publicID, err)
	}
	return nil
}
