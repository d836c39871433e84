package gstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GStorage struct {
	storageClient *storage.Client
	bucket        string
	prefix        string
}

// NewGStorage connects to bucket. Objects are written under prefix. With an
// empty credentialsFilePath the application default credentials are used.
func NewGStorage(ctx context.Context, credentialsFilePath, bucket, prefix string, opts ...option.ClientOption) (*GStorage, error) {
	if credentialsFilePath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFilePath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGStorage: %v", err)
	}

	return &GStorage{storageClient: client, bucket: bucket, prefix: prefix}, nil
}

// UploadFile uploads the file at filePath and returns the gs:// URI of the
// new object.
func (gs *GStorage) UploadFile(ctx context.Context, filePath string) (string, error) {
	// Open local file in filePath
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("os.Open: %v", err)
	}
	defer f.Close()

	// Upload an object with storage.Writer.
	objectName := path.Join(gs.prefix, filepath.Base(filePath))
	wc := gs.storageClient.Bucket(gs.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = "text/csv"
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return "", fmt.Errorf("io.Copy: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %v", err)
	}

	return fmt.Sprintf("gs://%s/%s", gs.bucket, objectName), nil
}

func (gs *GStorage) Close() error {
	return gs.storageClient.Close()
}
