package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/demandplan/internal/config"
	"github.com/andresuchdata/demandplan/internal/domain"
)

const (
	analysisKeyPrefix     = "planning:analysis"
	analysisScanBatchSize = 100
)

type AnalysisCache interface {
	Get(ctx context.Context, key string) (*domain.AnalysisResult, bool, error)
	Set(ctx context.Context, key string, result *domain.AnalysisResult) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalysisCache struct{}

func NewAnalysisCache(cfg config.CacheConfig) (AnalysisCache, error) {
	if !cfg.Enabled {
		return &noopAnalysisCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalysisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalysisCache() AnalysisCache {
	return &noopAnalysisCache{}
}

func (c *redisAnalysisCache) Get(ctx context.Context, key string) (*domain.AnalysisResult, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode analysis cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisAnalysisCache) Set(ctx context.Context, key string, result *domain.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalysisCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, analysisKeyPrefix, analysisScanBatchSize)
}

func (n *noopAnalysisCache) Get(ctx context.Context, key string) (*domain.AnalysisResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) Set(ctx context.Context, key string, result *domain.AnalysisResult) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// AnalysisKey derives a cache key from the resolved request. Identical inputs
// and parameters always hash to the same key. Scenario ids and names do not
// affect the result and are left out.
func AnalysisKey(req domain.AnalysisRequest) (string, error) {
	if len(req.Scenarios) > 0 {
		scenarios := make([]domain.Scenario, len(req.Scenarios))
		for i, s := range req.Scenarios {
			scenarios[i] = domain.Scenario{Month: s.Month, Multiplier: s.Multiplier}
		}
		req.Scenarios = scenarios
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode analysis key: %w", err)
	}
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s:%s", analysisKeyPrefix, hex.EncodeToString(sum[:])), nil
}
