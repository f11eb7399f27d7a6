package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

var ErrInvalidInput = errors.New("invalid input")

const keyPrefix = "teacher_uploaded_images"

// S3API is the subset of the S3 client the uploader uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds the uploader settings.
type Config struct {
	Bucket string
	Region string
}

// Service stores teacher-uploaded files in the shared bucket and hands back
// their public URL.
type Service struct {
	s3     S3API
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New constructs a Service instance.
func New(client S3API, cfg Config, logger *zap.Logger) *Service {
	if client == nil {
		panic("s3 client is required")
	}
	if cfg.Bucket == "" || cfg.Region == "" {
		panic("bucket and region are required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Service{s3: client, cfg: cfg, logger: logger, now: time.Now}
}

// Upload stores the file under a timestamped key and returns its URL. The
// timestamp prefix keeps same-named uploads from overwriting each other.
func (s *Service) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}

	key := fmt.Sprintf("%s/%d-%s", keyPrefix, s.now().Unix(), name)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.s3.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	s.logger.Info("file uploaded", zap.String("key", key))
	return url, nil
}

// sanitizeFilename keeps the base name and replaces anything that would
// break an S3 key or URL.
func sanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
