// Package storage wires the optional MinIO/S3 client used for mirrored
// archive assets.
package storage

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/openheritage/arscale/internal/config"
)

// NewMinioClient builds an S3 client from the storage configuration.
func NewMinioClient(cfg config.StorageConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize s3 client: %w", err)
	}
	return client, nil
}
