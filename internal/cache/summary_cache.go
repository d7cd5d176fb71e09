package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is what gets stored for a summarized text.
type Entry struct {
	Summary   string  `json:"summary"`
	TimeTaken float64 `json:"time_taken"`
	Model     string  `json:"model"`
}

// SummaryCache stores summaries in Redis. A nil *SummaryCache is a valid,
// always-missing cache.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Key derives the cache key from the model key and the exact input text.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("summary:%s:%s", strings.ToLower(model), hex.EncodeToString(sum[:]))
}

func (c *SummaryCache) Get(ctx context.Context, model, text string) (*Entry, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, Key(model, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached summary: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("decode cached summary: %w", err)
	}
	return &e, true, nil
}

func (c *SummaryCache) Set(ctx context.Context, model, text string, e Entry) error {
	if c == nil || e.Summary == "" {
		return nil
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := c.client.Set(ctx, Key(model, text), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached summary: %w", err)
	}
	return nil
}
