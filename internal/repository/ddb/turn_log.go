package ddb

import (
	"context"
	"fmt"
	"time"

	"draftpad-backend/internal/domain"

	appErrors "draftpad-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

type ddbTurn struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	UserID    string `dynamodbav:"UserID"`
	Role      string `dynamodbav:"Role"`
	Text      string `dynamodbav:"Text"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

// TurnLog is the DynamoDB implementation of TurnRecorder. Turns sort by
// append time within a user partition; the uuid suffix keeps same-instant
// appends from colliding.
type TurnLog struct {
	client    *dynamodb.Client
	tableName string
	now       func() time.Time
}

// NewTurnLog creates a DynamoDB-backed turn log.
func NewTurnLog(client *dynamodb.Client, tableName string) *TurnLog {
	return &TurnLog{client: client, tableName: tableName, now: time.Now}
}

// AppendTurn implements repository.TurnRecorder.
func (l *TurnLog) AppendTurn(ctx context.Context, userID string, turn domain.ChatTurn) error {
	createdAt := l.now().UTC().Format(time.RFC3339Nano)
	item, err := attributevalue.MarshalMap(ddbTurn{
		PK:        turnPK(userID),
		SK:        fmt.Sprintf("TURN#%s#%s", createdAt, uuid.New().String()),
		UserID:    userID,
		Role:      turn.Role,
		Text:      turn.Text,
		CreatedAt: createdAt,
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal chat turn")
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to store chat turn")
	}
	return nil
}

func turnPK(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}
