// Package registry discovers and loads workflow definitions from a DefinitionSource.
// Every load is validated; a definition that is missing, unreadable or invalid
// resolves to advisorflow.ErrWorkflowNotFound.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/norcalsbdc/advisorflow"
	"github.com/norcalsbdc/advisorflow/cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyPrefix = "definition:"

	// sharedLoadTimeout bounds a load that concurrent callers share
	sharedLoadTimeout = 30 * time.Second
)

// Registry resolves workflow ids to validated definitions
type Registry struct {
	source   advisorflow.DefinitionSource
	cache    cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
	group    singleflight.Group
}

// Option configures a Registry
type Option func(*Registry)

// WithCache serves raw definition blobs from c for ttl before rereading the source
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Registry) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates a registry over source
func New(source advisorflow.DefinitionSource, opts ...Option) *Registry {
	r := &Registry{
		source:   source,
		cacheTTL: advisorflow.DefaultCacheTTL,
		logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Str("component", "registry").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Discover lists every definition the source holds, ordered by source name.
// Blobs that cannot be decoded are skipped. Summary fields fall back to the
// blob's conventional name.
func (r *Registry) Discover(ctx context.Context) ([]advisorflow.WorkflowSummary, error) {
	raws, err := r.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow definitions: %w", err)
	}

	summaries := make([]advisorflow.WorkflowSummary, 0, len(raws))
	for _, raw := range raws {
		def, err := advisorflow.DecodeDefinition(raw)
		if err != nil {
			advisorflow.LogDefinitionSkipped(r.logger, raw.Name, err)
			continue
		}

		summary := def.Summary()
		if summary.ID == "" {
			summary.ID = raw.Name
		}
		if summary.Name == "" {
			summary.Name = raw.Name
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// Load resolves id to a validated definition. The conventional name is tried
// first, then every blob is scanned for a matching internal id. Concurrent
// loads of the same id share one source read.
func (r *Registry) Load(ctx context.Context, id string) (*advisorflow.WorkflowDefinition, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", advisorflow.ErrWorkflowNotFound)
	}

	// the shared load outlives any single caller
	ch := r.group.DoChan(id, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return r.load(loadCtx, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*advisorflow.WorkflowDefinition), nil
	}
}

func (r *Registry) load(ctx context.Context, id string) (*advisorflow.WorkflowDefinition, error) {
	raw, err := r.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	def, err := advisorflow.LoadDefinition(raw)
	if err != nil {
		var ve *advisorflow.ValidationError
		if errors.As(err, &ve) {
			advisorflow.LogDefinitionInvalid(r.logger, raw.Name, ve.Errors)
			return nil, err
		}
		advisorflow.LogDefinitionSkipped(r.logger, raw.Name, err)
		return nil, fmt.Errorf("%w: %w", advisorflow.ErrWorkflowNotFound, err)
	}

	return def, nil
}

// resolve finds the raw blob for id, consulting the cache first
func (r *Registry) resolve(ctx context.Context, id string) (advisorflow.RawDefinition, error) {
	if raw, ok := r.cached(ctx, id); ok {
		return raw, nil
	}

	raw, err := r.source.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, advisorflow.ErrDefinitionNotFound) {
			return advisorflow.RawDefinition{}, fmt.Errorf("failed to read workflow %q: %w", id, err)
		}

		var found bool
		raw, found, err = r.scanForID(ctx, id)
		if err != nil {
			return advisorflow.RawDefinition{}, err
		}
		if !found {
			return advisorflow.RawDefinition{}, fmt.Errorf("%w: %q", advisorflow.ErrWorkflowNotFound, id)
		}
	}

	r.store(ctx, id, raw)
	return raw, nil
}

func (r *Registry) scanForID(ctx context.Context, id string) (advisorflow.RawDefinition, bool, error) {
	raws, err := r.source.List(ctx)
	if err != nil {
		return advisorflow.RawDefinition{}, false, fmt.Errorf("failed to list workflow definitions: %w", err)
	}

	for _, raw := range raws {
		def, err := advisorflow.DecodeDefinition(raw)
		if err != nil {
			continue
		}
		if def.ID == id {
			return raw, true, nil
		}
	}
	return advisorflow.RawDefinition{}, false, nil
}

// Report is the validation outcome of one source blob
type Report struct {
	Name       string   `json:"name"`
	WorkflowID string   `json:"workflow_id,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// Valid returns true when the blob produced no errors
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateAll decodes and validates every blob in the source
func (r *Registry) ValidateAll(ctx context.Context) ([]Report, error) {
	raws, err := r.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow definitions: %w", err)
	}

	reports := make([]Report, 0, len(raws))
	for _, raw := range raws {
		reports = append(reports, ValidateRaw(raw))
	}
	return reports, nil
}

// ValidateRaw produces the report for a single blob
func ValidateRaw(raw advisorflow.RawDefinition) Report {
	def, errs := advisorflow.ValidateRaw(raw)
	report := Report{Name: raw.Name, Errors: errs}
	if def != nil {
		report.WorkflowID = def.ID
	}
	return report
}

// Invalidate drops any cached blob for id
func (r *Registry) Invalidate(ctx context.Context, id string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(ctx, cacheKeyPrefix+id)
}

// cachedRaw is the cache encoding of a RawDefinition
type cachedRaw struct {
	Name   string                       `json:"name"`
	Format advisorflow.DefinitionFormat `json:"format"`
	Data   []byte                       `json:"data"`
}

func (r *Registry) cached(ctx context.Context, id string) (advisorflow.RawDefinition, bool) {
	if r.cache == nil {
		return advisorflow.RawDefinition{}, false
	}

	hit, ok, err := r.cache.Get(ctx, cacheKeyPrefix+id)
	if err != nil {
		r.logger.Warn().Err(err).Str("workflow_id", id).Msg("Definition cache read failed")
		return advisorflow.RawDefinition{}, false
	}
	if !ok {
		return advisorflow.RawDefinition{}, false
	}

	var entry cachedRaw
	if err := json.Unmarshal(hit.Value, &entry); err != nil {
		return advisorflow.RawDefinition{}, false
	}
	return advisorflow.RawDefinition{Name: entry.Name, Format: entry.Format, Data: entry.Data}, true
}

func (r *Registry) store(ctx context.Context, id string, raw advisorflow.RawDefinition) {
	if r.cache == nil {
		return
	}

	data, err := json.Marshal(cachedRaw{Name: raw.Name, Format: raw.Format, Data: raw.Data})
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKeyPrefix+id, data, r.cacheTTL); err != nil {
		r.logger.Warn().Err(err).Str("workflow_id", id).Msg("Definition cache write failed")
	}
}
