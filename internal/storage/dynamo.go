package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
	"github.com/ignite/cad-normalizer/internal/template"
)

const dynamoTemplatePK = "TEMPLATE"

// DynamoStore persists templates in a DynamoDB table under a single
// partition key, one item per template.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoItem is the stored shape: the template body travels as a JSON
// string in Data.
type dynamoItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
}

// NewDynamoStore creates a DynamoDB-backed template store.
func NewDynamoStore(ctx context.Context, tableName, region, profile string) (*DynamoStore, error) {
	var cfg aws.Config
	var err error
	if profile != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &DynamoStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}, nil
}

func (s *DynamoStore) List(ctx context.Context) ([]template.Template, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: dynamoTemplatePK},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}

	templates := make([]template.Template, 0, len(out.Items))
	for _, item := range out.Items {
		var it dynamoItem
		if err := attributevalue.UnmarshalMap(item, &it); err != nil {
			logger.Warn("skipping unreadable template item", "error", err.Error())
			continue
		}
		var t template.Template
		if err := json.Unmarshal([]byte(it.Data), &t); err != nil {
			logger.Warn("skipping corrupt template record", "template_id", it.SK, "error", err.Error())
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (template.Template, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: dynamoTemplatePK},
			"SK": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return template.Template{}, fmt.Errorf("getting template %s: %w", id, err)
	}
	if out.Item == nil {
		return template.Template{}, template.ErrNotFound
	}

	var it dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return template.Template{}, fmt.Errorf("unmarshaling template %s: %w", id, err)
	}
	var t template.Template
	if err := json.Unmarshal([]byte(it.Data), &t); err != nil {
		return template.Template{}, fmt.Errorf("parsing template %s: %w", id, err)
	}
	return t, nil
}

func (s *DynamoStore) Save(ctx context.Context, t *template.Template) error {
	prepare(t, func() string { return uuid.New().String() })

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	item := dynamoItem{
		PK:        dynamoTemplatePK,
		SK:        t.ID,
		Data:      string(data),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("saving template %s: %w", t.ID, err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, id string) error {
	// Conditional delete so a missing record surfaces as ErrNotFound
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: dynamoTemplatePK},
			"SK": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(SK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return template.ErrNotFound
		}
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	return nil
}

func (s *DynamoStore) TouchUsage(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	t.UseCount++
	t.LastUsed = &now
	return s.Save(ctx, &t)
}
