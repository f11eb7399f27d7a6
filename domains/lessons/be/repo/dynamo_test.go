package repo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/service"
)

// The dashboard frontend reads these rows directly, so the attribute names
// and formats on the wire are part of the contract.
func TestDynamoLessonStoreAgainstLocal(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("skipping dynamodb integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	client := localDynamo(t, ctx)

	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String("Grade_and_Subject"),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	require.NoError(t, err)

	store := NewDynamoLessonStore(client, "Grade_and_Subject")

	err = store.PutLesson(ctx, service.LessonRecord{
		ID:                "lesson-1",
		CreatedAt:         time.Date(2024, 5, 1, 12, 30, 15, 0, time.UTC),
		Grade:             "9",
		Section:           "A",
		Period:            "2",
		Subject:           "Algebra",
		GradeAndSubject:   "TD: Algebra",
		GradeAndSubjectUI: "Algebra - Assignment",
		Status:            service.StatusActive,
		TenantEmail:       "tenant@school.edu",
		TenantName:        "Test School",
		Icon:              "https://example.com/icons/homework.png",
	})
	require.NoError(t, err)

	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String("Grade_and_Subject"),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: "lesson-1"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Item)

	require.Equal(t, "TD: Algebra", stringAttr(t, out.Item, "Grade_and_Subject"))
	require.Equal(t, "Algebra - Assignment", stringAttr(t, out.Item, "Grade_and_Subject_UI"))
	require.Equal(t, "Active", stringAttr(t, out.Item, "status"))
	require.Equal(t, "2024-05-01,12:30:15", stringAttr(t, out.Item, "Created_at"))
	require.Equal(t, "tenant@school.edu", stringAttr(t, out.Item, "tenantEmail"))

	// Fresh lessons start with zero credits.
	require.Equal(t, "0", numberAttr(t, out.Item, "quiz_credit"))
	require.Equal(t, "0", numberAttr(t, out.Item, "course_credit"))
}

func stringAttr(t *testing.T, item map[string]types.AttributeValue, name string) string {
	t.Helper()

	attr, ok := item[name].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %s is not a string", name)
	return attr.Value
}

func numberAttr(t *testing.T, item map[string]types.AttributeValue, name string) string {
	t.Helper()

	attr, ok := item[name].(*types.AttributeValueMemberN)
	require.True(t, ok, "attribute %s is not a number", name)
	return attr.Value
}

func localDynamo(t *testing.T, ctx context.Context) *dynamodb.Client {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "amazon/dynamodb-local:2.5.2",
			ExposedPorts: []string{"8000/tcp"},
			WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.PortEndpoint(ctx, "8000/tcp", "http")
	require.NoError(t, err)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-west-2"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
	require.NoError(t, err)

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}
