// Package crud implements the generic repository shared by all entity
// endpoints: single-entity fetch, offset/limit listing with the platform's
// reserved query parameters, and the lazy paged result sequence in result.go.
package crud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/labhub-io/labhub-go/client"
)

// HeaderTotalCount is the response header carrying the unpaged collection
// size for listing endpoints.
const HeaderTotalCount = "x-total-count"

// Reserved query parameters injected on every listing call. Caller-supplied
// values for these keys are always overridden.
const (
	paramOffset   = "offset"
	paramLimit    = "limit"
	paramArchived = "archived"
	paramSortBy   = "sortBy[createdAt]"
)

// ErrBadTotal marks a listing response whose x-total-count header is missing
// or not a decimal integer.
var ErrBadTotal = errors.New("bad total count header")

// Factory constructs a T from the decoded JSON field map of one entity. The
// capability handle is passed through so constructed entities can issue
// follow-up calls themselves. Validating required fields is the factory's
// contract; the repository never inspects the map.
type Factory[T any] func(fields map[string]any, c client.Doer) (T, error)

// Repository translates CRUD intents for one resource path into HTTP calls
// and materializes typed entities via its factory.
type Repository[T any] struct {
	client   client.Doer
	basePath string
	build    Factory[T]
	log      zerolog.Logger
}

// NewRepository binds a repository to a capability, a resource path and an
// entity factory.
func NewRepository[T any](c client.Doer, basePath string, build Factory[T], logger zerolog.Logger) *Repository[T] {
	l := logger.With().Str("module", "crud").Str("resource", basePath).Logger()
	return &Repository[T]{client: c, basePath: basePath, build: build, log: l}
}

// Get fetches a single entity by ID. Transport errors (including not-found)
// propagate unchanged and the factory is never invoked for them.
func (r *Repository[T]) Get(ctx context.Context, entityID string) (T, error) {
	var zero T
	resp, err := r.client.Get(ctx, r.basePath+"/"+entityID, nil)
	if err != nil {
		return zero, err
	}

	var fields map[string]any
	if err := resp.Decode(&fields); err != nil {
		return zero, fmt.Errorf("%s/%s: %w", r.basePath, entityID, err)
	}
	return r.build(fields, r.client)
}

// List fetches one page of entities starting at offset. The returned total
// is the server-reported size of the whole collection matching the query.
// Entities come back in server order; no client-side re-sort. Offset and
// limit are passed through as-is, out-of-range values are the server's
// concern.
func (r *Repository[T]) List(ctx context.Context, offset, limit int, query map[string]string) ([]T, int, error) {
	q := url.Values{}
	for k, v := range query {
		q.Set(k, v)
	}
	// Reserved keys win over caller-supplied values.
	q.Set(paramOffset, strconv.Itoa(offset))
	q.Set(paramLimit, strconv.Itoa(limit))
	q.Set(paramArchived, "false")
	q.Set(paramSortBy, "desc")

	resp, err := r.client.Get(ctx, r.basePath, q)
	if err != nil {
		return nil, 0, err
	}

	total, err := totalCount(resp.Header)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", r.basePath, err)
	}

	var raw []map[string]any
	if err := resp.Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", r.basePath, err)
	}

	items := make([]T, 0, len(raw))
	for _, fields := range raw {
		entity, err := r.build(fields, r.client)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, entity)
	}

	r.log.Debug().Int("offset", offset).Int("limit", limit).Int("returned", len(items)).Int("total", total).Msg("page fetched")
	return items, total, nil
}

func totalCount(h http.Header) (int, error) {
	raw := h.Get(HeaderTotalCount)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s missing", ErrBadTotal, HeaderTotalCount)
	}
	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadTotal, raw)
	}
	return total, nil
}
