package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubS3 struct {
	input *s3.PutObjectInput
	err   error
}

func (s *stubS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.input = params
	if s.err != nil {
		return nil, s.err
	}
	return &s3.PutObjectOutput{}, nil
}

func newTestService(t *testing.T, stub *stubS3) *Service {
	t.Helper()
	svc := New(stub, Config{Bucket: "icp-image-gen", Region: "us-west-2"}, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func TestUpload(t *testing.T) {
	stub := &stubS3{}
	svc := newTestService(t, stub)

	url, err := svc.Upload(context.Background(), "worksheet.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)

	assert.Equal(t, "https://icp-image-gen.s3.us-west-2.amazonaws.com/teacher_uploaded_images/1700000000-worksheet.png", url)

	require.NotNil(t, stub.input)
	assert.Equal(t, "icp-image-gen", aws.ToString(stub.input.Bucket))
	assert.Equal(t, "teacher_uploaded_images/1700000000-worksheet.png", aws.ToString(stub.input.Key))
	assert.Equal(t, "image/png", aws.ToString(stub.input.ContentType))

	body, err := io.ReadAll(stub.input.Body)
	require.NoError(t, err)
	assert.Equal(t, "data", string(body))
}

func TestUploadSanitizesFilename(t *testing.T) {
	stub := &stubS3{}
	svc := newTestService(t, stub)

	_, err := svc.Upload(context.Background(), "../secret/les son?.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)

	assert.Equal(t, "teacher_uploaded_images/1700000000-les-son-.png", aws.ToString(stub.input.Key))
}

func TestUploadRequiresFilename(t *testing.T) {
	svc := newTestService(t, &stubS3{})

	_, err := svc.Upload(context.Background(), "", "image/png", strings.NewReader("data"))
	require.ErrorIs(t, err, ErrInvalidInput)
}
