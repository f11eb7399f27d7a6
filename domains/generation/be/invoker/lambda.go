// Package invoker adapts the downstream module-processing function to the
// generation workflow.
package invoker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/service"
)

// LambdaAPI is the subset of the Lambda client the invoker uses.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Config holds the invoker settings.
type Config struct {
	FunctionName string
	// Qualifier pins invocations to a published alias.
	Qualifier string
}

// Lambda synchronously invokes the configured function and decodes its
// response envelope.
type Lambda struct {
	client LambdaAPI
	cfg    Config
	logger *zap.Logger
}

// NewLambda constructs a Lambda invoker.
func NewLambda(client LambdaAPI, cfg Config, logger *zap.Logger) *Lambda {
	if client == nil {
		panic("lambda client is required")
	}
	if cfg.FunctionName == "" {
		panic("function name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lambda{client: client, cfg: cfg, logger: logger}
}

func (l *Lambda) Invoke(ctx context.Context, payload map[string]any) (service.InvocationResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return service.InvocationResult{}, fmt.Errorf("encode invocation payload: %w", err)
	}

	input := &lambda.InvokeInput{
		FunctionName:   aws.String(l.cfg.FunctionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        raw,
	}
	if l.cfg.Qualifier != "" {
		input.Qualifier = aws.String(l.cfg.Qualifier)
	}

	out, err := l.client.Invoke(ctx, input)
	if err != nil {
		return service.InvocationResult{}, fmt.Errorf("invoke %s: %w", l.cfg.FunctionName, err)
	}
	if out.FunctionError != nil {
		l.logger.Error("function invocation errored",
			zap.String("function", l.cfg.FunctionName),
			zap.String("function_error", *out.FunctionError),
		)
		return service.InvocationResult{}, fmt.Errorf("invoke %s: function error %s", l.cfg.FunctionName, *out.FunctionError)
	}

	var env struct {
		StatusCode int `json:"statusCode"`
		Body       any `json:"body"`
	}
	if err := json.Unmarshal(out.Payload, &env); err != nil {
		return service.InvocationResult{}, fmt.Errorf("decode %s response envelope: %w", l.cfg.FunctionName, err)
	}
	return service.InvocationResult{StatusCode: env.StatusCode, Body: env.Body}, nil
}

var _ service.FunctionInvoker = (*Lambda)(nil)
