package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubLambda struct {
	input  *lambda.InvokeInput
	output *lambda.InvokeOutput
	err    error
}

func (s *stubLambda) Invoke(_ context.Context, params *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	s.input = params
	if s.err != nil {
		return nil, s.err
	}
	return s.output, nil
}

func TestInvokeDecodesEnvelope(t *testing.T) {
	stub := &stubLambda{output: &lambda.InvokeOutput{
		Payload: []byte(`{"statusCode": 200, "body": "created"}`),
	}}
	inv := NewLambda(stub, Config{FunctionName: "createPredefinedModule", Qualifier: "Production"}, zaptest.NewLogger(t))

	res, err := inv.Invoke(context.Background(), map[string]any{"user_id": "tenant@example.com"})
	require.NoError(t, err)

	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "created", res.Body)

	require.NotNil(t, stub.input)
	assert.Equal(t, "createPredefinedModule", aws.ToString(stub.input.FunctionName))
	assert.Equal(t, "Production", aws.ToString(stub.input.Qualifier))
	assert.Equal(t, types.InvocationTypeRequestResponse, stub.input.InvocationType)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(stub.input.Payload, &sent))
	assert.Equal(t, "tenant@example.com", sent["user_id"])
}

func TestInvokeOmitsEmptyQualifier(t *testing.T) {
	stub := &stubLambda{output: &lambda.InvokeOutput{Payload: []byte(`{"statusCode": 200}`)}}
	inv := NewLambda(stub, Config{FunctionName: "createPredefinedModule"}, zaptest.NewLogger(t))

	_, err := inv.Invoke(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, stub.input.Qualifier)
}

func TestInvokeSurfacesFunctionError(t *testing.T) {
	stub := &stubLambda{output: &lambda.InvokeOutput{
		FunctionError: aws.String("Unhandled"),
		Payload:       []byte(`{"errorMessage": "boom"}`),
	}}
	inv := NewLambda(stub, Config{FunctionName: "createPredefinedModule"}, zaptest.NewLogger(t))

	_, err := inv.Invoke(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unhandled")
}

func TestInvokeSurfacesTransportError(t *testing.T) {
	stub := &stubLambda{err: errors.New("access denied")}
	inv := NewLambda(stub, Config{FunctionName: "createPredefinedModule"}, zaptest.NewLogger(t))

	_, err := inv.Invoke(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestInvokeRejectsNonEnvelopePayload(t *testing.T) {
	stub := &stubLambda{output: &lambda.InvokeOutput{Payload: []byte("not json")}}
	inv := NewLambda(stub, Config{FunctionName: "createPredefinedModule"}, zaptest.NewLogger(t))

	_, err := inv.Invoke(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
