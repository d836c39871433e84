package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Daskott/clinicstack/server/gstorage"
	"github.com/Daskott/clinicstack/server/s3store"
)

// UploadConfig holds the credentials of the storage backends an export can be
// uploaded to.
type UploadConfig struct {
	GoogleCredentials string
	S3                s3store.Config
}

// Target is a parsed upload destination such as gs://bucket/prefix.
type Target struct {
	Scheme string
	Bucket string
	Prefix string
}

func ParseTarget(target string) (Target, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Target{}, fmt.Errorf("invalid upload target %q: %v", target, err)
	}

	if u.Scheme != "gs" && u.Scheme != "s3" {
		return Target{}, fmt.Errorf("invalid upload target %q: scheme must be gs or s3", target)
	}

	if u.Host == "" {
		return Target{}, fmt.Errorf("invalid upload target %q: bucket required", target)
	}

	return Target{Scheme: u.Scheme, Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// NewUploader returns the uploader for target, or nil when target is empty.
func NewUploader(ctx context.Context, target string, config UploadConfig) (Uploader, error) {
	if target == "" {
		return nil, nil
	}

	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}

	if t.Scheme == "gs" {
		gs, err := gstorage.NewGStorage(ctx, config.GoogleCredentials, t.Bucket, t.Prefix)
		if err != nil {
			return nil, err
		}
		return gs, nil
	}

	s3Config := config.S3
	s3Config.Bucket = t.Bucket
	s3Config.Prefix = t.Prefix

	store, err := s3store.New(ctx, s3Config)
	if err != nil {
		return nil, err
	}
	return store, nil
}
