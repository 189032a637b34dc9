package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/kmorel/notecast/constants"
)

// Fetcher retrieves raw song bytes for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// New returns a Fetcher that dispatches on the URL scheme: http(s), s3, or a
// plain filesystem path (with or without a file:// prefix).
func New() Fetcher {
	return &fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type fetcher struct {
	client *http.Client

	s3Once sync.Once
	s3     *s3.S3
	s3Err  error
}

func (f *fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return f.fetchHTTP(ctx, url)
	case strings.HasPrefix(url, "s3://"):
		return f.fetchS3(ctx, url)
	case strings.HasPrefix(url, "file://"):
		return os.ReadFile(strings.TrimPrefix(url, "file://"))
	default:
		return os.ReadFile(url)
	}
}

func (f *fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %v: unexpected status %v", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (f *fetcher) fetchS3(ctx context.Context, url string) ([]byte, error) {
	bucket, key, err := splitS3URL(url)
	if err != nil {
		return nil, err
	}
	f.s3Once.Do(func() {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(constants.GetS3Region()),
		})
		if err != nil {
			f.s3Err = fmt.Errorf("creating aws session: %w", err)
			return
		}
		f.s3 = s3.New(sess)
	})
	if f.s3Err != nil {
		return nil, f.s3Err
	}
	out, err := f.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %v: %w", url, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func splitS3URL(url string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(url, "s3://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 url: %v", url)
	}
	return bucket, key, nil
}
