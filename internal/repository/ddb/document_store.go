// Package ddb implements the persistence contracts on AWS DynamoDB.
// This is the only layer that should have knowledge of DynamoDB specifics.
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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ddbDocument represents a document item in DynamoDB.
type ddbDocument struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	DocumentID string `dynamodbav:"DocumentID"`
	OwnerScope string `dynamodbav:"OwnerScope"`
	Title      string `dynamodbav:"Title"`
	Content    string `dynamodbav:"Content"`
	Kind       string `dynamodbav:"Kind"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
}

// DocumentStore is the DynamoDB implementation of DocumentRepository.
// Documents live under PK "DOC#<id>"; GSI1 indexes them by owner scope so
// QueryByOwner stays a single query.
type DocumentStore struct {
	client    *dynamodb.Client
	tableName string
	indexName string
}

// NewDocumentStore creates a DynamoDB-backed document store.
func NewDocumentStore(client *dynamodb.Client, tableName, indexName string) *DocumentStore {
	return &DocumentStore{client: client, tableName: tableName, indexName: indexName}
}

// GetByIDs implements repository.DocumentRepository. Unknown ids are skipped.
func (s *DocumentStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Document, error) {
	var out []domain.Document
	for _, id := range ids {
		result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: docPK(id)},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
		})
		if err != nil {
			return nil, appErrors.Wrap(err, "failed to load document "+id)
		}
		if result.Item == nil {
			continue
		}

		var item ddbDocument
		if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
			return nil, appErrors.Wrap(err, "failed to unmarshal document "+id)
		}
		out = append(out, item.toDomain())
	}
	return out, nil
}

// UpsertBatch implements repository.DocumentRepository.
func (s *DocumentStore) UpsertBatch(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	writes := make([]types.WriteRequest, 0, len(docs))
	for _, doc := range docs {
		item, err := attributevalue.MarshalMap(fromDomain(doc))
		if err != nil {
			return appErrors.Wrap(err, "failed to marshal document "+doc.ID)
		}
		writes = append(writes, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	_, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.tableName: writes},
	})
	if err != nil {
		return appErrors.Wrap(err, "failed to batch upsert documents")
	}
	return nil
}

// QueryByOwner implements repository.DocumentRepository.
func (s *DocumentStore) QueryByOwner(ctx context.Context, ownerScope string, limit int) ([]domain.Document, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(s.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerPK(ownerScope)},
		},
		ScanIndexForward: aws.Bool(false), // newest first
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to query documents by owner")
	}

	out := make([]domain.Document, 0, len(result.Items))
	for _, raw := range result.Items {
		var item ddbDocument
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, appErrors.Wrap(err, "failed to unmarshal document item")
		}
		out = append(out, item.toDomain())
	}
	return out, nil
}

func docPK(id string) string {
	return fmt.Sprintf("DOC#%s", id)
}

func ownerPK(ownerScope string) string {
	return fmt.Sprintf("OWNER#%s", ownerScope)
}

func fromDomain(doc domain.Document) ddbDocument {
	updatedAt := doc.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return ddbDocument{
		PK:         docPK(doc.ID),
		SK:         "METADATA",
		DocumentID: doc.ID,
		OwnerScope: doc.OwnerScope,
		Title:      doc.Title,
		Content:    doc.Content,
		Kind:       string(doc.Kind),
		UpdatedAt:  updatedAt,
		GSI1PK:     ownerPK(doc.OwnerScope),
		GSI1SK:     updatedAt,
	}
}

func (d ddbDocument) toDomain() domain.Document {
	updatedAt, _ := time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return domain.Document{
		ID:         d.DocumentID,
		OwnerScope: d.OwnerScope,
		Title:      d.Title,
		Content:    d.Content,
		Kind:       domain.DocumentKind(d.Kind),
		UpdatedAt:  updatedAt,
	}
}
