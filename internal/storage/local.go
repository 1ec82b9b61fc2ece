package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalPublisher serves rendered videos from a directory the web app
// exposes under a public URL prefix. The renderer already writes its
// output into that directory, so publishing is a rename at most.
type LocalPublisher struct {
	dir       string
	urlPrefix string
}

// NewLocalPublisher creates a publisher rooted at dir, mapping files to
// urlPrefix. The directory is created if missing.
func NewLocalPublisher(dir, urlPrefix string) (*LocalPublisher, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create publish directory: %w", err)
	}
	return &LocalPublisher{dir: dir, urlPrefix: urlPrefix}, nil
}

// Verify interface implementation at compile time.
var _ Publisher = (*LocalPublisher)(nil)

// Publish moves the file into the serving directory and returns its
// public path. A move within the same filesystem is atomic; if the
// file is already in place the rename is a no-op.
func (p *LocalPublisher) Publish(_ context.Context, localPath, name string) (string, error) {
	target := filepath.Join(p.dir, name)
	if localPath != target {
		if err := os.Rename(localPath, target); err != nil {
			return "", fmt.Errorf("move %s into publish directory: %w", localPath, err)
		}
	}
	return p.urlPrefix + "/" + name, nil
}
