// Package store provides persistence implementations for conversation workflow state.
// The ConversationStore interface is defined in the root advisorflow package
// (../store_interface.go) to avoid import cycles.
//
// This package contains concrete implementations:
//   - DynamoDBStore: AWS DynamoDB backend using the single-table layout in schema.go
//   - RedisStore: Redis backend with key prefix and TTL
//   - MemoryStore: in-memory backend for tests and the CLI
//
// Every backend stores the state as opaque JSON, so the state round-trips unchanged.
package store
