package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalPublisher_Publish(t *testing.T) {
	dir := t.TempDir()
	pub, err := NewLocalPublisher(filepath.Join(dir, "processed"), "/api/uploads/processed")
	if err != nil {
		t.Fatalf("NewLocalPublisher() error = %v", err)
	}

	src := filepath.Join(dir, "render-output.mp4")
	if err := os.WriteFile(src, []byte("video bytes"), 0600); err != nil {
		t.Fatal(err)
	}

	url, err := pub.Publish(context.Background(), src, "processed-job-1.mp4")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if url != "/api/uploads/processed/processed-job-1.mp4" {
		t.Errorf("url = %v, want /api/uploads/processed/processed-job-1.mp4", url)
	}

	moved := filepath.Join(dir, "processed", "processed-job-1.mp4")
	content, err := os.ReadFile(moved)
	if err != nil {
		t.Fatalf("published file missing: %v", err)
	}
	if string(content) != "video bytes" {
		t.Errorf("published content = %q, want %q", content, "video bytes")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source file should have been moved, stat err = %v", err)
	}
}

func TestLocalPublisher_PublishInPlace(t *testing.T) {
	dir := t.TempDir()
	pub, err := NewLocalPublisher(dir, "/api/uploads/processed")
	if err != nil {
		t.Fatalf("NewLocalPublisher() error = %v", err)
	}

	// Renderer already wrote the file into the serving directory.
	src := filepath.Join(dir, "processed-job-2.mp4")
	if err := os.WriteFile(src, []byte("in place"), 0600); err != nil {
		t.Fatal(err)
	}

	url, err := pub.Publish(context.Background(), src, "processed-job-2.mp4")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if url != "/api/uploads/processed/processed-job-2.mp4" {
		t.Errorf("url = %v", url)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("file should still exist: %v", err)
	}
}

func TestLocalPublisher_MissingSource(t *testing.T) {
	pub, err := NewLocalPublisher(t.TempDir(), "/api/uploads/processed")
	if err != nil {
		t.Fatalf("NewLocalPublisher() error = %v", err)
	}

	_, err = pub.Publish(context.Background(), "/nonexistent/file.mp4", "out.mp4")
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
