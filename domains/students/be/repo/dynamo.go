package repo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/students/be/service"
)

// DynamoAPI is the subset of the DynamoDB client the directory uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoDirectory reads and writes student records in the directory table,
// keyed by email.
type DynamoDirectory struct {
	client DynamoAPI
	table  string
}

// NewDynamoDirectory constructs a DynamoDirectory over the given table.
func NewDynamoDirectory(client DynamoAPI, table string) *DynamoDirectory {
	if client == nil {
		panic("dynamodb client is required")
	}
	if table == "" {
		panic("student table name is required")
	}
	return &DynamoDirectory{client: client, table: table}
}

type studentItem struct {
	Email       string   `dynamodbav:"email"`
	SubjectList []string `dynamodbav:"subject_list"`
}

func (r *DynamoDirectory) GetByEmail(ctx context.Context, email string) (service.Student, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
	})
	if err != nil {
		return service.Student{}, fmt.Errorf("get student %q: %w", email, err)
	}
	if out.Item == nil {
		return service.Student{}, service.ErrStudentNotFound
	}

	var item studentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return service.Student{}, fmt.Errorf("decode student %q: %w", email, err)
	}
	return service.Student{Email: item.Email, SubjectList: item.SubjectList}, nil
}

func (r *DynamoDirectory) SetSubjectList(ctx context.Context, email string, subjects []string) error {
	list, err := attributevalue.Marshal(subjects)
	if err != nil {
		return fmt.Errorf("encode subject list: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"email": &types.AttributeValueMemberS{Value: email},
		},
		UpdateExpression: aws.String("SET subject_list = :s"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": list,
		},
	})
	if err != nil {
		return fmt.Errorf("update subject list for %q: %w", email, err)
	}
	return nil
}

// Ensure interface compliance.
var _ service.Directory = (*DynamoDirectory)(nil)
