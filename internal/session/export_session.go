package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// exportSessionTTL bounds how long an abandoned flag survives
const exportSessionTTL = 24 * time.Hour

// ExportSession records an export that has started but not yet finished
type ExportSession struct {
	ReferenceNumber string    `json:"referenceNumber"`
	Format          string    `json:"format"`
	StartedAt       time.Time `json:"startedAt"`
}

// ExportSessionStore persists the export-in-progress flag per client session
type ExportSessionStore struct {
	client redis.Cmdable
	prefix string
}

// NewExportSessionStore creates a store; prefix namespaces every key
func NewExportSessionStore(client redis.Cmdable, prefix string) *ExportSessionStore {
	return &ExportSessionStore{client: client, prefix: prefix}
}

func (s *ExportSessionStore) key(sessionID string) string {
	return s.prefix + "export-session:" + sessionID
}

// MarkStarted sets the flag for sessionID
func (s *ExportSessionStore) MarkStarted(ctx context.Context, sessionID string, es ExportSession) error {
	payload, err := json.Marshal(es)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sessionID), payload, exportSessionTTL).Err(); err != nil {
		return fmt.Errorf("marking export session: %w", err)
	}
	return nil
}

// Clear removes the flag for sessionID
func (s *ExportSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clearing export session: %w", err)
	}
	return nil
}

// TakeInterrupted reads and clears the flag. A nil result means the previous
// export, if any, finished normally.
func (s *ExportSessionStore) TakeInterrupted(ctx context.Context, sessionID string) (*ExportSession, error) {
	payload, err := s.client.GetDel(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading export session: %w", err)
	}
	var es ExportSession
	if err := json.Unmarshal(payload, &es); err != nil {
		return nil, fmt.Errorf("decoding export session: %w", err)
	}
	return &es, nil
}
