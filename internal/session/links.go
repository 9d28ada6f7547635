package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLinkNotFound is returned for unknown, used or expired download tokens
var ErrLinkNotFound = errors.New("download link not found")

// Link is a single-use pointer to a stored export
type Link struct {
	Token       string    `json:"token"`
	BlobKey     string    `json:"blobKey"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// LinkStore keeps download links with a TTL and an expiry index of their blobs
type LinkStore struct {
	client redis.Cmdable
	prefix string
}

// NewLinkStore creates a store; prefix namespaces every key
func NewLinkStore(client redis.Cmdable, prefix string) *LinkStore {
	return &LinkStore{client: client, prefix: prefix}
}

func (s *LinkStore) linkKey(token string) string {
	return s.prefix + "download:" + token
}

func (s *LinkStore) expiryKey() string {
	return s.prefix + "download-expiry"
}

// Create stores link for ttl and indexes its blob under link.ExpiresAt for cleanup
func (s *LinkStore) Create(ctx context.Context, link Link, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("download link ttl must be positive, got %s", ttl)
	}
	payload, err := json.Marshal(link)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.linkKey(link.Token), payload, ttl)
		pipe.ZAdd(ctx, s.expiryKey(), redis.Z{Score: float64(link.ExpiresAt.Unix()), Member: link.BlobKey})
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing download link: %w", err)
	}
	return nil
}

// Consume returns the link and deletes it, so a token works once
func (s *LinkStore) Consume(ctx context.Context, token string) (*Link, error) {
	payload, err := s.client.GetDel(ctx, s.linkKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("reading download link: %w", err)
	}
	var link Link
	if err := json.Unmarshal(payload, &link); err != nil {
		return nil, fmt.Errorf("decoding download link: %w", err)
	}
	return &link, nil
}

// Forget drops blobKey from the expiry index once the blob is deleted
func (s *LinkStore) Forget(ctx context.Context, blobKey string) error {
	if err := s.client.ZRem(ctx, s.expiryKey(), blobKey).Err(); err != nil {
		return fmt.Errorf("removing expiry entry: %w", err)
	}
	return nil
}

// Expired lists up to limit blob keys whose links expired at or before now
func (s *LinkStore) Expired(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	keys, err := s.client.ZRangeByScore(ctx, s.expiryKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("listing expired downloads: %w", err)
	}
	return keys, nil
}
