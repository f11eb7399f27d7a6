package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/service"
)

// DynamoAPI is the subset of the DynamoDB client the generation stores use.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoJobStore reads generation job records. Predefined jobs live in a
// shared table keyed by id; user jobs live in a per-user table keyed by
// (email, id).
type DynamoJobStore struct {
	client          DynamoAPI
	predefinedTable string
	userTable       string
}

// NewDynamoJobStore constructs a DynamoJobStore over the two job tables.
func NewDynamoJobStore(client DynamoAPI, predefinedTable, userTable string) *DynamoJobStore {
	if client == nil {
		panic("dynamodb client is required")
	}
	if predefinedTable == "" || userTable == "" {
		panic("job table names are required")
	}
	return &DynamoJobStore{client: client, predefinedTable: predefinedTable, userTable: userTable}
}

type jobItem struct {
	ID          string `dynamodbav:"id"`
	SeriesTitle string `dynamodbav:"series_title"`
	Generated   *bool  `dynamodbav:"Generated"`
}

func (r *DynamoJobStore) GetPredefinedJob(ctx context.Context, id string) (service.Job, error) {
	return r.getJob(ctx, r.predefinedTable, map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	})
}

func (r *DynamoJobStore) GetUserJob(ctx context.Context, email, id string) (service.Job, error) {
	return r.getJob(ctx, r.userTable, map[string]types.AttributeValue{
		"email": &types.AttributeValueMemberS{Value: email},
		"id":    &types.AttributeValueMemberS{Value: id},
	})
}

func (r *DynamoJobStore) getJob(ctx context.Context, table string, key map[string]types.AttributeValue) (service.Job, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       key,
	})
	if err != nil {
		return service.Job{}, fmt.Errorf("get job from %s: %w", table, err)
	}
	if out.Item == nil {
		return service.Job{}, service.ErrJobNotFound
	}

	var item jobItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return service.Job{}, fmt.Errorf("decode job from %s: %w", table, err)
	}
	return service.Job{ID: item.ID, Title: item.SeriesTitle, Generated: item.Generated}, nil
}

// DynamoDedupStore keeps one generated course per (owner email, topic id).
type DynamoDedupStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoDedupStore constructs a DynamoDedupStore over the course table.
func NewDynamoDedupStore(client DynamoAPI, table string) *DynamoDedupStore {
	if client == nil {
		panic("dynamodb client is required")
	}
	if table == "" {
		panic("course table name is required")
	}
	return &DynamoDedupStore{client: client, table: table}
}

const dedupCreatedAtLayout = "2006-01-02,15:04:05"

type courseItem struct {
	Email     string         `dynamodbav:"email"`
	ID        string         `dynamodbav:"id"`
	SubjectID string         `dynamodbav:"subject_id"`
	Course    map[string]any `dynamodbav:"course"`
	Env       string         `dynamodbav:"env"`
	CreatedAt string         `dynamodbav:"created_at"`
}

func (r *DynamoDedupStore) Exists(ctx context.Context, ownerEmail, topicID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: ownerEmail},
			"id":    &types.AttributeValueMemberS{Value: topicID},
		},
	})
	if err != nil {
		return false, fmt.Errorf("get course %s/%s: %w", ownerEmail, topicID, err)
	}
	return out.Item != nil, nil
}

func (r *DynamoDedupStore) Put(ctx context.Context, rec service.CourseRecord) error {
	item, err := attributevalue.MarshalMap(courseItem{
		Email:     rec.OwnerEmail,
		ID:        rec.TopicID,
		SubjectID: rec.SubjectID,
		Course:    rec.Course,
		Env:       rec.Env,
		CreatedAt: time.Now().UTC().Format(dedupCreatedAtLayout),
	})
	if err != nil {
		return fmt.Errorf("encode course %s/%s: %w", rec.OwnerEmail, rec.TopicID, err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put course %s/%s: %w", rec.OwnerEmail, rec.TopicID, err)
	}
	return nil
}

// DynamoSubjectResolver resolves a subject id to its owning tenant via the
// lesson table.
type DynamoSubjectResolver struct {
	client DynamoAPI
	table  string
}

// NewDynamoSubjectResolver constructs a DynamoSubjectResolver over the
// lesson table.
func NewDynamoSubjectResolver(client DynamoAPI, table string) *DynamoSubjectResolver {
	if client == nil {
		panic("dynamodb client is required")
	}
	if table == "" {
		panic("lesson table name is required")
	}
	return &DynamoSubjectResolver{client: client, table: table}
}

func (r *DynamoSubjectResolver) SubjectOwner(ctx context.Context, subjectID string) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: subjectID},
		},
	})
	if err != nil {
		return "", fmt.Errorf("get subject %s: %w", subjectID, err)
	}
	if out.Item == nil {
		return "", service.ErrSubjectNotFound
	}

	var item struct {
		TenantEmail string `dynamodbav:"tenantEmail"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", fmt.Errorf("decode subject %s: %w", subjectID, err)
	}
	if item.TenantEmail == "" {
		return "", service.ErrSubjectNotFound
	}
	return item.TenantEmail, nil
}

// Ensure interface compliance.
var (
	_ service.JobStore             = (*DynamoJobStore)(nil)
	_ service.DedupStore           = (*DynamoDedupStore)(nil)
	_ service.SubjectOwnerResolver = (*DynamoSubjectResolver)(nil)
)
