// Package storage publishes finished videos to their final home. It
// defines the Publisher port and implementations for local disk serving
// and S3 upload.
package storage

import "context"

// Publisher moves a rendered file to durable storage and returns the
// URL or path clients use to fetch it.
type Publisher interface {
	// Publish stores the file at localPath under the given name and
	// returns its public location.
	Publish(ctx context.Context, localPath, name string) (string, error)
}
