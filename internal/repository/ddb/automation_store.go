package ddb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"draftpad-backend/internal/domain"

	appErrors "draftpad-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type ddbAutomation struct {
	PK                  string `dynamodbav:"PK"`
	SK                  string `dynamodbav:"SK"`
	AutomationID        string `dynamodbav:"AutomationID"`
	UserID              string `dynamodbav:"UserID"`
	Kind                string `dynamodbav:"Kind"`
	Cron                string `dynamodbav:"Cron"`
	Timezone            string `dynamodbav:"Timezone"`
	TaskPlan            string `dynamodbav:"TaskPlan"` // JSON-encoded steps
	ConfirmAfterSeconds int    `dynamodbav:"ConfirmAfterSeconds"`
	AutoConfirm         bool   `dynamodbav:"AutoConfirm"`
	Enabled             bool   `dynamodbav:"Enabled"`
	Instruction         string `dynamodbav:"Instruction"`
	CallbackOrigin      string `dynamodbav:"CallbackOrigin"`
	CreatedAt           string `dynamodbav:"CreatedAt"`
}

// AutomationStore is the DynamoDB implementation of AutomationStore.
type AutomationStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewAutomationStore creates a DynamoDB-backed automation store.
func NewAutomationStore(client *dynamodb.Client, tableName string) *AutomationStore {
	return &AutomationStore{client: client, tableName: tableName}
}

// Create implements repository.AutomationStore.
func (s *AutomationStore) Create(ctx context.Context, spec domain.AutomationSpec) error {
	plan, err := json.Marshal(spec.TaskPlan)
	if err != nil {
		return appErrors.Wrap(err, "failed to encode task plan")
	}

	item, err := attributevalue.MarshalMap(ddbAutomation{
		PK:                  automationPK(spec.ID),
		SK:                  "SPEC",
		AutomationID:        spec.ID,
		UserID:              spec.UserID,
		Kind:                string(spec.Kind),
		Cron:                spec.Cron,
		Timezone:            spec.Timezone,
		TaskPlan:            string(plan),
		ConfirmAfterSeconds: spec.ConfirmAfterSeconds,
		AutoConfirm:         spec.AutoConfirm,
		Enabled:             spec.Enabled,
		Instruction:         spec.Instruction,
		CallbackOrigin:      spec.CallbackOrigin,
		CreatedAt:           spec.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal automation")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to store automation")
	}
	return nil
}

// Get implements repository.AutomationStore.
func (s *AutomationStore) Get(ctx context.Context, id string) (domain.AutomationSpec, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: automationPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "SPEC"},
		},
	})
	if err != nil {
		return domain.AutomationSpec{}, appErrors.Wrap(err, "failed to load automation")
	}
	if result.Item == nil {
		return domain.AutomationSpec{}, appErrors.NewNotFound("automation not found: " + id)
	}

	var item ddbAutomation
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return domain.AutomationSpec{}, appErrors.Wrap(err, "failed to unmarshal automation")
	}

	var plan []domain.TaskStep
	if item.TaskPlan != "" {
		if err := json.Unmarshal([]byte(item.TaskPlan), &plan); err != nil {
			return domain.AutomationSpec{}, appErrors.Wrap(err, "failed to decode task plan")
		}
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)

	return domain.AutomationSpec{
		ID:                  item.AutomationID,
		UserID:              item.UserID,
		Kind:                domain.AutomationKind(item.Kind),
		Cron:                item.Cron,
		Timezone:            item.Timezone,
		TaskPlan:            plan,
		ConfirmAfterSeconds: item.ConfirmAfterSeconds,
		AutoConfirm:         item.AutoConfirm,
		Enabled:             item.Enabled,
		Instruction:         item.Instruction,
		CallbackOrigin:      item.CallbackOrigin,
		CreatedAt:           createdAt,
	}, nil
}

func automationPK(id string) string {
	return fmt.Sprintf("AUTOMATION#%s", id)
}
