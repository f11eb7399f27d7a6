package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/service"
)

// CourseGeneratorConfig holds the course generator settings.
type CourseGeneratorConfig struct {
	URL string

	// Timeout must cover a full synchronous course generation, which can
	// take minutes.
	Timeout time.Duration
}

const defaultGenerateTimeout = 5 * time.Minute

// CourseGenerator calls the synchronous course generator.
type CourseGenerator struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// NewCourseGenerator constructs a CourseGenerator instance.
func NewCourseGenerator(cfg CourseGeneratorConfig, logger *zap.Logger) *CourseGenerator {
	if cfg.URL == "" {
		panic("course generator URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &CourseGenerator{
		url:    cfg.URL,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// GenerateCourse posts the topic description and extracts the course payload
// from a 200 response. Non-200 statuses and missing course payloads are left
// for the workflow to classify; only transport failures become errors.
func (c *CourseGenerator) GenerateCourse(ctx context.Context, req service.CourseRequest) (service.CourseResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return service.CourseResult{}, fmt.Errorf("encode generate payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return service.CourseResult{}, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return service.CourseResult{}, fmt.Errorf("call course generator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return service.CourseResult{}, fmt.Errorf("read course generator response: %w", err)
	}

	result := service.CourseResult{StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("course generator returned error status",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)),
		)
		return result, nil
	}

	var payload struct {
		Course map[string]any `json:"course"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.logger.Warn("course generator returned undecodable body", zap.ByteString("body", truncate(raw, 512)))
		return result, nil
	}
	result.Course = payload.Course
	return result, nil
}

var _ service.CourseGenerator = (*CourseGenerator)(nil)
