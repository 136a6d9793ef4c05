package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"draftpad-backend/internal/domain"
	"draftpad-backend/internal/repository"

	appErrors "draftpad-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type ddbLedgerEntry struct {
	PK               string `dynamodbav:"PK"`
	SK               string `dynamodbav:"SK"`
	TaskID           string `dynamodbav:"TaskID"`
	UserID           string `dynamodbav:"UserID"`
	Delta            int    `dynamodbav:"Delta"`
	ResultingBalance int    `dynamodbav:"ResultingBalance"`
	CreatedAt        string `dynamodbav:"CreatedAt"`
}

type ddbBalance struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	UserID    string `dynamodbav:"UserID"`
	Credits   int    `dynamodbav:"Credits"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// LedgerStore is the DynamoDB implementation of LedgerStore. The conditional
// put on the task id partition key is the uniqueness constraint that makes
// billing idempotent.
type LedgerStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewLedgerStore creates a DynamoDB-backed ledger store.
func NewLedgerStore(client *dynamodb.Client, tableName string) *LedgerStore {
	return &LedgerStore{client: client, tableName: tableName}
}

// InsertEntry implements repository.LedgerStore.
func (s *LedgerStore) InsertEntry(ctx context.Context, entry domain.LedgerEntry) error {
	item, err := attributevalue.MarshalMap(ddbLedgerEntry{
		PK:               ledgerPK(entry.TaskID),
		SK:               "ENTRY",
		TaskID:           entry.TaskID,
		UserID:           entry.UserID,
		Delta:            entry.Delta,
		ResultingBalance: entry.ResultingBalance,
		CreatedAt:        entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal ledger entry")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return repository.ErrDuplicateTask
		}
		return appErrors.Wrap(err, "failed to insert ledger entry")
	}
	return nil
}

// GetBalance implements repository.LedgerStore.
func (s *LedgerStore) GetBalance(ctx context.Context, userID string) (domain.Balance, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: balancePK(userID)},
			"SK": &types.AttributeValueMemberS{Value: "BALANCE"},
		},
	})
	if err != nil {
		return domain.Balance{}, appErrors.Wrap(err, "failed to load balance")
	}
	if result.Item == nil {
		return domain.Balance{}, repository.ErrBalanceNotFound
	}

	var item ddbBalance
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return domain.Balance{}, appErrors.Wrap(err, "failed to unmarshal balance")
	}
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return domain.Balance{UserID: item.UserID, Credits: item.Credits, UpdatedAt: updatedAt}, nil
}

// UpdateBalance implements repository.LedgerStore.
func (s *LedgerStore) UpdateBalance(ctx context.Context, userID string, credits int) error {
	item, err := attributevalue.MarshalMap(ddbBalance{
		PK:        balancePK(userID),
		SK:        "BALANCE",
		UserID:    userID,
		Credits:   credits,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal balance")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to update balance")
	}
	return nil
}

func ledgerPK(taskID string) string {
	return fmt.Sprintf("LEDGER#%s", taskID)
}

func balancePK(userID string) string {
	return fmt.Sprintf("BALANCE#%s", userID)
}
