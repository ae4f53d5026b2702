package evaluator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/regwatch-backend/internal/logger"
	"github.com/yungbote/regwatch-backend/internal/types"
)

// CachedEvaluator memoizes verdicts in redis, keyed by listing content,
// so an unchanged listing does not hit the evaluator on every recheck.
// Cache failures degrade to a direct evaluation.
type CachedEvaluator struct {
	inner Evaluator
	rdb   *goredis.Client
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedEvaluator(inner Evaluator, addr string, log *logger.Logger, ttl time.Duration) (*CachedEvaluator, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &CachedEvaluator{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With("service", "CachedEvaluator"),
	}, nil
}

func (e *CachedEvaluator) Evaluate(ctx context.Context, listing *types.Listing) (*types.Verdict, error) {
	key := e.cacheKey(listing)

	raw, err := e.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var verdict types.Verdict
		if jsonErr := json.Unmarshal(raw, &verdict); jsonErr == nil && ValidateVerdict(&verdict) == nil {
			e.log.Debug("Verdict cache hit", "listing_id", listing.ID)
			return &verdict, nil
		}
		// Unreadable entry, drop it and re-evaluate.
		_ = e.rdb.Del(ctx, key).Err()
	} else if err != goredis.Nil {
		e.log.Warn("Verdict cache read failed", "error", err, "listing_id", listing.ID)
	}

	verdict, err := e.inner.Evaluate(ctx, listing)
	if err != nil {
		return nil, err
	}

	if raw, jsonErr := json.Marshal(verdict); jsonErr == nil {
		if setErr := e.rdb.Set(ctx, key, raw, e.ttl).Err(); setErr != nil {
			e.log.Warn("Verdict cache write failed", "error", setErr, "listing_id", listing.ID)
		}
	}
	return verdict, nil
}

func (e *CachedEvaluator) Close() error {
	return e.rdb.Close()
}

func (e *CachedEvaluator) cacheKey(listing *types.Listing) string {
	hasher := sha256.New()
	hasher.Write([]byte(listing.Title))
	hasher.Write([]byte{0})
	hasher.Write([]byte(listing.Description))
	hasher.Write([]byte{0})
	if listing.Category != nil {
		hasher.Write([]byte(*listing.Category))
	}
	return "compliance:verdict:" + hex.EncodeToString(hasher.Sum(nil))
}
