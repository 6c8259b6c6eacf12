package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"promptswitcher/internal/cache"
	"promptswitcher/internal/llm"
	"promptswitcher/internal/metrics"
	"promptswitcher/pkg/logging/logging"
)

// Defaults for Config fields left zero.
const (
	DefaultModel           = "gpt-5-mini"
	DefaultReasoningEffort = llm.EffortLow
	DefaultMaxOutputTokens = 800
	DefaultVersionID       = "v1"
)

type Config struct {
	Model           string
	ReasoningEffort string
	MaxOutputTokens int

	CacheTTL  time.Duration
	VersionID string // cache key namespace

	// DedupeInFlight makes concurrent misses for the same idea share one
	// upstream call.
	DedupeInFlight bool
	// StrictResult rejects results that are not exactly the six prompt keys.
	StrictResult bool
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.ReasoningEffort == "" {
		c.ReasoningEffort = DefaultReasoningEffort
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	if c.VersionID == "" {
		c.VersionID = DefaultVersionID
	}
	return c
}

// Generation is the outcome of one Generate call.
type Generation struct {
	Key      cache.IdeaKey
	Payload  json.RawMessage // compact JSON object, upstream key order
	CacheHit bool
}

// Service turns ideas into prompt sets, caching results by idea.
type Service struct {
	cfg      Config
	cache    cache.Cache
	provider llm.Provider
	group    *singleflight.Group
}

func NewService(cfg Config, c cache.Cache, provider llm.Provider) *Service {
	cfg = cfg.withDefaults()

	s := &Service{
		cfg:      cfg,
		cache:    c,
		provider: provider,
	}
	if cfg.DedupeInFlight {
		s.group = &singleflight.Group{}
	}
	return s
}

// Generate returns the prompt set for idea, from cache when a result newer
// than the cache TTL exists.
func (s *Service) Generate(ctx context.Context, idea string) (*Generation, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, ErrInvalidInput
	}

	key := cache.BuildIdeaKey(idea, s.cfg.VersionID)
	ctx = logging.WithFields(ctx, zap.String("idea_hash", key.Hash))

	if payload, ok := s.lookup(ctx, key); ok {
		return &Generation{Key: key, Payload: payload, CacheHit: true}, nil
	}

	if s.group == nil {
		return s.generate(ctx, idea, key)
	}

	v, err, shared := s.group.Do(key.String(), func() (any, error) {
		return s.generate(ctx, idea, key)
	})
	if shared {
		logging.L(ctx).Debug("joined in-flight generation")
	}
	if err != nil {
		return nil, err
	}
	gen := *v.(*Generation)
	return &gen, nil
}

func (s *Service) lookup(ctx context.Context, key cache.IdeaKey) (json.RawMessage, bool) {
	payload, hit, err := s.cache.Get(ctx, key.String())
	if err != nil {
		// best-effort: a broken cache must not fail the request
		logging.L(ctx).Warn("cache_get_error", zap.Error(err))
		return nil, false
	}
	return payload, hit
}

func (s *Service) generate(ctx context.Context, idea string, key cache.IdeaKey) (*Generation, error) {
	logger := logging.L(ctx)
	start := time.Now()

	resp, err := s.provider.CreateResponse(ctx, &llm.ResponseRequest{
		Model:           s.cfg.Model,
		ReasoningEffort: s.cfg.ReasoningEffort,
		Instructions:    Instructions,
		Input:           inputPrefix + idea,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
		JSONObject:      true,
	})
	if err != nil {
		metrics.ObserveUpstream("upstream_error", time.Since(start))
		logger.Error("upstream call failed",
			zap.String("error_type", fmt.Sprintf("%T", err)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	text := llm.ExtractText(resp)
	if text == "" {
		metrics.ObserveUpstream("no_text", time.Since(start))
		logger.Error("upstream returned no text",
			zap.String("response_id", resp.ID),
			zap.String("status", resp.Status),
			zap.Any("raw_output", resp.Output),
		)
		return nil, ErrNoTextReturned
	}

	payload, err := s.parse(text)
	if err != nil {
		outcome := "invalid_json"
		if errors.Is(err, ErrMalformedResult) {
			outcome = "malformed"
		}
		metrics.ObserveUpstream(outcome, time.Since(start))
		logger.Error("upstream output rejected",
			zap.Error(err),
			zap.String("text", truncate(text, 500)),
		)
		return nil, err
	}
	metrics.ObserveUpstream("ok", time.Since(start))

	if err := s.cache.Set(ctx, key.String(), payload, s.cfg.CacheTTL); err != nil {
		logger.Warn("cache_set_error", zap.Error(err))
	}

	logger.Info("generated prompts",
		zap.String("model", resp.Model),
		zap.Int("payload_bytes", len(payload)),
		zap.Duration("upstream_latency", time.Since(start)),
	)

	return &Generation{Key: key, Payload: payload}, nil
}

// parse checks that text is a JSON object and returns it compacted.
func (s *Service) parse(text string) (json.RawMessage, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpstreamJSON, err)
	}
	if obj == nil {
		// literal null
		return nil, ErrInvalidUpstreamJSON
	}

	if s.cfg.StrictResult {
		if err := validatePrompts(obj); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResult, err)
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpstreamJSON, err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
