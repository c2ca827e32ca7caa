package store

import "testing"

func TestConversationKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"partition key", conversationPK("abc-123"), "CONV#abc-123"},
		{"sort key", workflowStateSK(), "WORKFLOW_STATE"},
		{"redis key", redisWorkflowKey("advisorflow", "abc-123"), "advisorflow:conversation:abc-123:workflow"},
		{"redis key custom prefix", redisWorkflowKey("sbdc", "x"), "sbdc:conversation:x:workflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}
