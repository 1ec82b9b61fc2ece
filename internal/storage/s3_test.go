package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewS3Publisher(t *testing.T) {
	cfg := S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:4566", // LocalStack-like endpoint
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}

	pub, err := NewS3Publisher(cfg)
	if err != nil {
		t.Fatalf("NewS3Publisher() error = %v", err)
	}

	if pub.bucket != cfg.Bucket {
		t.Errorf("bucket = %v, want %v", pub.bucket, cfg.Bucket)
	}
	if pub.region != cfg.Region {
		t.Errorf("region = %v, want %v", pub.region, cfg.Region)
	}
}

func TestS3Publisher_Publish_MockServer(t *testing.T) {
	// Create a mock S3 server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT method, got %s", r.Method)
		}

		if !strings.Contains(r.URL.Path, "/processed-job-1.mp4") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		if !strings.Contains(string(body), "rendered video") {
			t.Errorf("unexpected body: %s", string(body))
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        server.URL,
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}

	pub, err := NewS3Publisher(cfg)
	if err != nil {
		t.Fatalf("NewS3Publisher() error = %v", err)
	}

	src := filepath.Join(t.TempDir(), "out.mp4")
	if err := os.WriteFile(src, []byte("rendered video"), 0600); err != nil {
		t.Fatal(err)
	}

	url, err := pub.Publish(context.Background(), src, "processed-job-1.mp4")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	expectedURL := "https://test-bucket.s3.us-east-1.amazonaws.com/processed-job-1.mp4"
	if url != expectedURL {
		t.Errorf("url = %v, want %v", url, expectedURL)
	}
}

func TestS3Publisher_Publish_MissingFile(t *testing.T) {
	cfg := S3Config{
		Bucket:          "test-bucket",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:4566",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
	}

	pub, err := NewS3Publisher(cfg)
	if err != nil {
		t.Fatalf("NewS3Publisher() error = %v", err)
	}

	_, err = pub.Publish(context.Background(), "/nonexistent/out.mp4", "out.mp4")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
