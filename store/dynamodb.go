package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/norcalsbdc/advisorflow"
)

// DynamoDBStore implements advisorflow.ConversationStore using AWS DynamoDB
type DynamoDBStore struct {
	client    DynamoDBClient
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// DynamoDBOption configures a DynamoDBStore
type DynamoDBOption func(*DynamoDBStore)

// WithItemTTL sets the expiry written to the ttl attribute. Zero disables expiry.
func WithItemTTL(ttl time.Duration) DynamoDBOption {
	return func(s *DynamoDBStore) {
		s.ttl = ttl
	}
}

// NewDynamoDBStore creates a new DynamoDB-backed conversation store
func NewDynamoDBStore(client DynamoDBClient, tableName string, opts ...DynamoDBOption) *DynamoDBStore {
	s := &DynamoDBStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ advisorflow.ConversationStore = (*DynamoDBStore)(nil)

// workflowStateItem is the DynamoDB item shape. The state is an opaque JSON string.
type workflowStateItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	EntityType     string `dynamodbav:"entity_type"`
	ConversationID string `dynamodbav:"conversation_id"`
	WorkflowID     string `dynamodbav:"workflow_id"`
	State          string `dynamodbav:"state"`
	UpdatedAt      string `dynamodbav:"updated_at"`
	TTL            int64  `dynamodbav:"ttl,omitempty"`
}

func (s *DynamoDBStore) key(conversationID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: conversationPK(conversationID)},
		AttrSK: &types.AttributeValueMemberS{Value: workflowStateSK()},
	}
}

func (s *DynamoDBStore) LoadWorkflowState(ctx context.Context, conversationID string) (string, *advisorflow.WorkflowState, error) {
	if conversationID == "" {
		return "", nil, advisorflow.ErrInvalidConversationID
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(conversationID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to get workflow state: %w", err)
	}

	if result.Item == nil {
		return "", nil, nil
	}

	var item workflowStateItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal workflow state item: %w", err)
	}

	if item.State == "" {
		return item.WorkflowID, nil, nil
	}

	state, err := decodeState([]byte(item.State))
	if err != nil {
		return "", nil, err
	}
	return item.WorkflowID, state, nil
}

func (s *DynamoDBStore) SaveWorkflowState(ctx context.Context, conversationID, workflowID string, state *advisorflow.WorkflowState) error {
	if err := validateSave(conversationID, state); err != nil {
		return err
	}

	data, err := encodeState(state)
	if err != nil {
		return err
	}

	now := s.now()
	record := workflowStateItem{
		PK:             conversationPK(conversationID),
		SK:             workflowStateSK(),
		EntityType:     EntityTypeWorkflowState,
		ConversationID: conversationID,
		WorkflowID:     workflowID,
		State:          string(data),
		UpdatedAt:      now.Format(time.RFC3339),
	}
	if s.ttl > 0 {
		record.TTL = now.Add(s.ttl).Unix()
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow state item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save workflow state: %w", err)
	}

	return nil
}

func (s *DynamoDBStore) DeleteWorkflowState(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return advisorflow.ErrInvalidConversationID
	}

	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(conversationID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete workflow state: %w", err)
	}

	return nil
}
