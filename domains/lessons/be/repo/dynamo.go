package repo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/lessons/be/service"
)

// createdAtLayout matches the timestamp format existing dashboard rows use.
const createdAtLayout = "2006-01-02,15:04:05"

// DynamoAPI is the subset of the DynamoDB client the lesson store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoLessonStore persists lesson records in the subject table, keyed by id.
type DynamoLessonStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoLessonStore constructs a DynamoLessonStore over the given table.
func NewDynamoLessonStore(client DynamoAPI, table string) *DynamoLessonStore {
	if client == nil {
		panic("dynamodb client is required")
	}
	if table == "" {
		panic("lesson table name is required")
	}
	return &DynamoLessonStore{client: client, table: table}
}

type lessonItem struct {
	ID                string `dynamodbav:"id"`
	CreatedAt         string `dynamodbav:"Created_at"`
	Grade             string `dynamodbav:"Grade"`
	GradeAndSubject   string `dynamodbav:"Grade_and_Subject"`
	GradeAndSubjectUI string `dynamodbav:"Grade_and_Subject_UI"`
	Status            string `dynamodbav:"status"`
	Subject           string `dynamodbav:"Subject"`
	TenantEmail       string `dynamodbav:"tenantEmail"`
	TenantName        string `dynamodbav:"tenantName"`
	QuizCredit        int    `dynamodbav:"quiz_credit"`
	CourseCredit      int    `dynamodbav:"course_credit"`
	Icon              string `dynamodbav:"icon"`
	Period            string `dynamodbav:"Period"`
	Section           string `dynamodbav:"Section"`
}

func (r *DynamoLessonStore) PutLesson(ctx context.Context, rec service.LessonRecord) error {
	item, err := attributevalue.MarshalMap(lessonItem{
		ID:                rec.ID,
		CreatedAt:         rec.CreatedAt.UTC().Format(createdAtLayout),
		Grade:             rec.Grade,
		GradeAndSubject:   rec.GradeAndSubject,
		GradeAndSubjectUI: rec.GradeAndSubjectUI,
		Status:            rec.Status,
		Subject:           rec.Subject,
		TenantEmail:       rec.TenantEmail,
		TenantName:        rec.TenantName,
		Icon:              rec.Icon,
		Period:            rec.Period,
		Section:           rec.Section,
	})
	if err != nil {
		return fmt.Errorf("encode lesson record: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put lesson record %s: %w", rec.ID, err)
	}
	return nil
}

// Ensure interface compliance.
var _ service.LessonStore = (*DynamoLessonStore)(nil)
