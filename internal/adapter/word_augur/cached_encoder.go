package word_augur

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"word-orchestrator/internal/domain"
)

// RemoteVectorCache is a shared second-level cache, typically Redis.
type RemoteVectorCache interface {
	GetVector(ctx context.Context, key string) ([]float32, bool, error)
	SetVector(ctx context.Context, key string, vec []float32) error
}

// CachedEncoder memoizes query embeddings. Lookups go to an in-process LRU
// first, then the optional remote cache, then the wrapped encoder.
// Concurrent misses for the same single text share one upstream call. The
// shared call is bounded by callTimeout and outlives any single caller, so a
// cancelled caller never fails the others waiting on it.
// Returned vectors are shared and must not be modified.
type CachedEncoder struct {
	inner       domain.VectorEncoder
	local       *expirable.LRU[string, []float32]
	remote      RemoteVectorCache
	group       singleflight.Group
	callTimeout time.Duration
	logger      *slog.Logger
}

const defaultSharedCallTimeout = 30 * time.Second

func NewCachedEncoder(inner domain.VectorEncoder, size int, ttl, callTimeout time.Duration, remote RemoteVectorCache, logger *slog.Logger) *CachedEncoder {
	if size <= 0 {
		size = 1024
	}
	if callTimeout <= 0 {
		callTimeout = defaultSharedCallTimeout
	}
	return &CachedEncoder{
		inner:       inner,
		local:       expirable.NewLRU[string, []float32](size, nil, ttl),
		remote:      remote,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

func (c *CachedEncoder) key(text string) string {
	return "embed:" + c.inner.Version() + ":" + strings.TrimSpace(text)
}

func (c *CachedEncoder) lookup(ctx context.Context, key string) ([]float32, bool) {
	if v, ok := c.local.Get(key); ok {
		return v, true
	}
	if c.remote == nil {
		return nil, false
	}
	v, ok, err := c.remote.GetVector(ctx, key)
	if err != nil {
		c.logger.Warn("embedding_cache_read_failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	if ok {
		c.local.Add(key, v)
	}
	return v, ok
}

func (c *CachedEncoder) store(ctx context.Context, key string, vec []float32) {
	c.local.Add(key, vec)
	if c.remote == nil {
		return
	}
	if err := c.remote.SetVector(ctx, key, vec); err != nil {
		c.logger.Warn("embedding_cache_write_failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

func (c *CachedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []int
	for i, t := range texts {
		if v, ok := c.lookup(ctx, c.key(t)); ok {
			out[i] = v
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	if len(missing) == 1 {
		i := missing[0]
		v, err := c.encodeShared(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
		return out, nil
	}

	batch := make([]string, len(missing))
	for j, i := range missing {
		batch[j] = texts[i]
	}
	vecs, err := c.inner.Encode(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(batch) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d inputs", len(vecs), len(batch))
	}
	for j, i := range missing {
		out[i] = vecs[j]
		c.store(ctx, c.key(texts[i]), vecs[j])
	}
	return out, nil
}

// encodeShared joins or starts the upstream call for text. The call runs on a
// context detached from ctx; ctx only bounds how long this caller waits.
func (c *CachedEncoder) encodeShared(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		defer cancel()

		vecs, err := c.inner.Encode(callCtx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("encoder returned %d vectors for 1 input", len(vecs))
		}
		c.store(callCtx, key, vecs[0])
		return vecs[0], nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

func (c *CachedEncoder) Version() string {
	return c.inner.Version()
}

var _ domain.VectorEncoder = (*CachedEncoder)(nil)
