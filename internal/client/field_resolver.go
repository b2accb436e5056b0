package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/awhere-client/internal/metrics"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

type fieldSource interface {
	List(ctx context.Context, params awhere.Params) (*awhere.FieldList, error)
	Create(ctx context.Context, request *awhere.FieldCreateRequest) (*awhere.Field, error)
}

type resolutionObserver interface {
	ObserveFieldResolution(outcome string)
}

// FieldResolver implements awhere.FieldResolver. It indexes fields by
// center point, loading the full listing once and creating fields for
// coordinates it has not seen. Entries are never evicted.
type FieldResolver struct {
	fields   fieldSource
	observer resolutionObserver

	mutex   sync.RWMutex
	index   map[string]*awhere.Field
	fetched bool

	// Concurrent population and creation for the same key share one call.
	group singleflight.Group
}

// NewFieldResolver creates a resolver backed by fields. observer may be nil.
func NewFieldResolver(fields fieldSource, observer resolutionObserver) *FieldResolver {
	return &FieldResolver{
		fields:   fields,
		observer: observer,
		index:    make(map[string]*awhere.Field),
	}
}

// Resolve implements awhere.FieldResolver.Resolve. A zero latitude or
// longitude is not resolvable and returns (nil, nil) without any I/O.
func (r *FieldResolver) Resolve(ctx context.Context, latitude, longitude float64) (*awhere.Field, error) {
	if latitude == 0 || longitude == 0 {
		return nil, nil
	}

	err := r.populate(ctx)
	if err != nil {
		r.observe(metrics.ResolutionFailed)

		return nil, err
	}

	key := awhere.CoordinateKey(latitude, longitude)

	if field := r.lookup(key); field != nil {
		r.observe(metrics.ResolutionCached)

		return field, nil
	}

	result, err := r.share(ctx, "create:"+key, func(ctx context.Context) (interface{}, error) {
		if field := r.lookup(key); field != nil {
			return field, nil
		}

		field, err := r.fields.Create(ctx, &awhere.FieldCreateRequest{Latitude: latitude, Longitude: longitude})
		if err != nil {
			return nil, err
		}

		r.mutex.Lock()
		r.index[field.CenterPoint.Key()] = field
		// Also remember the requested key in case the service rounds the point.
		r.index[key] = field
		r.mutex.Unlock()

		return field, nil
	})
	if err != nil {
		r.observe(metrics.ResolutionFailed)

		return nil, fmt.Errorf("resolving field at %s: %w", key, err)
	}

	r.observe(metrics.ResolutionCreated)

	field, _ := result.(*awhere.Field)
	copied := *field

	return &copied, nil
}

// ResolveAsync implements awhere.FieldResolver.ResolveAsync. Unresolvable
// coordinates and a nil callback are ignored; otherwise callback runs
// exactly once.
func (r *FieldResolver) ResolveAsync(ctx context.Context, latitude, longitude float64, callback awhere.Callback[*awhere.Field]) {
	if latitude == 0 || longitude == 0 || callback == nil {
		return
	}

	go func() {
		callback(r.Resolve(ctx, latitude, longitude))
	}()
}

// Len returns the number of indexed coordinate keys.
func (r *FieldResolver) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.index)
}

// populate loads the full field listing once per resolver. Once it has
// succeeded the index is authoritative: a miss means create, never refetch.
func (r *FieldResolver) populate(ctx context.Context) error {
	r.mutex.RLock()
	fetched := r.fetched
	r.mutex.RUnlock()

	if fetched {
		return nil
	}

	_, err := r.share(ctx, "populate", func(ctx context.Context) (interface{}, error) {
		r.mutex.RLock()
		fetched := r.fetched
		r.mutex.RUnlock()

		if fetched {
			return nil, nil
		}

		fields, err := r.listAll(ctx)
		if err != nil {
			return nil, err
		}

		r.mutex.Lock()
		defer r.mutex.Unlock()

		for i := range fields {
			field := fields[i]
			r.index[field.CenterPoint.Key()] = &field
		}

		r.fetched = true

		return nil, nil
	})

	return err
}

// listAll follows the listing's next links until the last page.
func (r *FieldResolver) listAll(ctx context.Context) ([]awhere.Field, error) {
	var (
		fields []awhere.Field
		params awhere.Params
	)

	seen := map[string]bool{}

	for {
		list, err := r.fields.List(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", awhere.ErrFieldListing, err)
		}

		if list == nil || list.Fields == nil {
			return nil, fmt.Errorf("%w: %w", awhere.ErrFieldListing, awhere.ErrFieldListMalformed)
		}

		fields = append(fields, list.Fields...)

		next := list.Links["next"].Href
		if next == "" {
			return fields, nil
		}

		if seen[next] {
			return nil, fmt.Errorf("%w: %w: next page %q repeats", awhere.ErrFieldListing, awhere.ErrFieldListMalformed, next)
		}

		seen[next] = true

		params, err = pageParams(next)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", awhere.ErrFieldListing, err)
		}
	}
}

// pageParams turns a next link such as "/v2/fields?limit=50&offset=50"
// into listing parameters.
func pageParams(href string) (awhere.Params, error) {
	parsed, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("parsing next page link %q: %w", href, err)
	}

	params := awhere.Params{}

	for key, values := range parsed.Query() {
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}

	return params, nil
}

// share runs fn once for concurrent callers of key. fn gets a context that
// outlives any one caller's cancellation; each caller still stops waiting
// when its own ctx is done.
func (r *FieldResolver) share(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	shared := context.WithoutCancel(ctx)

	results := r.group.DoChan(key, func() (interface{}, error) {
		return fn(shared)
	})

	select {
	case result := <-results:
		return result.Val, result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *FieldResolver) lookup(key string) *awhere.Field {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	field, ok := r.index[key]
	if !ok {
		return nil
	}

	copied := *field

	return &copied
}

func (r *FieldResolver) observe(outcome string) {
	if r.observer != nil {
		r.observer.ObserveFieldResolution(outcome)
	}
}
