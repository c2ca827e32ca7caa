package store

import "fmt"

// DynamoDB schema constants for single-table design
const (
	// Table attributes
	AttrPK             = "PK"
	AttrSK             = "SK"
	AttrEntityType     = "entity_type"
	AttrConversationID = "conversation_id"
	AttrWorkflowID     = "workflow_id"
	AttrState          = "state"
	AttrUpdatedAt      = "updated_at"
	AttrTTL            = "ttl"

	// Entity types
	EntityTypeWorkflowState = "WorkflowState"
)

// Key builders for single-table design

// WorkflowState keys: PK=CONV#{conversationID}, SK=WORKFLOW_STATE
func conversationPK(conversationID string) string {
	return fmt.Sprintf("CONV#%s", conversationID)
}

func workflowStateSK() string {
	return "WORKFLOW_STATE"
}

// Redis keys: {prefix}:conversation:{conversationID}:workflow
func redisWorkflowKey(prefix, conversationID string) string {
	return fmt.Sprintf("%s:conversation:%s:workflow", prefix, conversationID)
}
