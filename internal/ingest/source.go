package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

// ErrInvalidLocation is returned for source locations that cannot be opened.
var ErrInvalidLocation = errors.New("invalid source location")

// Opener resolves a source location to a byte stream.
//
// Supported locations:
//   - a plain filesystem path or file:///path
//   - gs://bucket/object in Google Cloud Storage
type Opener struct {
	// GCS is used for gs:// locations. When nil a client is created per
	// Open call with application default credentials.
	GCS *storage.Client
}

// Open returns a reader for location. The caller closes it.
func (o Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(location, "gs://"):
		bucket, object, err := parseGCSLocation(location)
		if err != nil {
			return nil, err
		}
		return o.openGCS(ctx, bucket, object)

	case strings.HasPrefix(location, "file://"):
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
		}
		return openFile(u.Path)

	case location == "":
		return nil, fmt.Errorf("%w: empty location", ErrInvalidLocation)

	default:
		return openFile(location)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func (o Opener) openGCS(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	client := o.GCS
	owned := false
	if client == nil {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		owned = true
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if owned {
			_ = client.Close()
		}
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}

	if !owned {
		return r, nil
	}
	return &gcsReader{Reader: r, client: client}, nil
}

// gcsReader closes the client it was opened with.
type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	return errors.Join(r.Reader.Close(), r.client.Close())
}

func parseGCSLocation(location string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(location, "gs://")
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q must be gs://bucket/object", ErrInvalidLocation, location)
	}
	return bucket, object, nil
}
