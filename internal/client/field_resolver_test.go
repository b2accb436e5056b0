package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/awhere-client/internal/metrics"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

var errListing = errors.New("listing unavailable")

// stubFields is an in-memory fieldSource.
type stubFields struct {
	mutex   sync.Mutex
	list    *awhere.FieldList
	listErr error
	// round simulates a service that stores a rounded center point.
	round bool
	delay time.Duration
	// pages, when set, serves the listing by its "offset" parameter.
	pages map[string]*awhere.FieldList

	lists   atomic.Int32
	creates atomic.Int32
}

func (s *stubFields) List(ctx context.Context, params awhere.Params) (*awhere.FieldList, error) {
	s.lists.Add(1)
	time.Sleep(s.delay)

	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.pages != nil {
		offset := ""
		if value, ok := params["offset"]; ok {
			offset = fmt.Sprint(value)
		}

		return s.pages[offset], nil
	}

	return s.list, s.listErr
}

func (s *stubFields) Create(_ context.Context, request *awhere.FieldCreateRequest) (*awhere.Field, error) {
	s.creates.Add(1)
	time.Sleep(s.delay)

	center := awhere.CenterPoint{Latitude: request.Latitude, Longitude: request.Longitude}
	if s.round {
		center = awhere.CenterPoint{Latitude: float64(int(request.Latitude)), Longitude: float64(int(request.Longitude))}
	}

	return &awhere.Field{ID: "created", CenterPoint: center}, nil
}

type recordingResolutions struct {
	mutex    sync.Mutex
	outcomes []string
}

func (r *recordingResolutions) ObserveFieldResolution(outcome string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.outcomes = append(r.outcomes, outcome)
}

func listOf(fields ...awhere.Field) *awhere.FieldList {
	return &awhere.FieldList{Fields: fields}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestFieldResolver_Resolve(t *testing.T) {
	t.Parallel()

	known := awhere.Field{ID: "known", CenterPoint: awhere.CenterPoint{Latitude: 39.7, Longitude: -104.9}}

	t.Run("zero coordinates do no I/O", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{list: listOf(known)}
		resolver := NewFieldResolver(fields, nil)

		for _, point := range [][2]float64{{0, 10}, {10, 0}, {0, 0}} {
			field, err := resolver.Resolve(context.Background(), point[0], point[1])
			require.NoError(t, err)
			assert.Nil(t, field)
		}

		assert.Equal(t, int32(0), fields.lists.Load())
		assert.Equal(t, int32(0), fields.creates.Load())
	})

	t.Run("listed field is found without creating", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{list: listOf(known)}
		observer := &recordingResolutions{}
		resolver := NewFieldResolver(fields, observer)

		field, err := resolver.Resolve(context.Background(), 39.70, -104.9)
		require.NoError(t, err)
		assert.Equal(t, "known", field.ID)

		field, err = resolver.Resolve(context.Background(), 39.7, -104.9)
		require.NoError(t, err)
		assert.Equal(t, "known", field.ID)

		assert.Equal(t, int32(1), fields.lists.Load())
		assert.Equal(t, int32(0), fields.creates.Load())
		assert.Equal(t, []string{metrics.ResolutionCached, metrics.ResolutionCached}, observer.outcomes)
	})

	t.Run("unknown point is created once", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{list: listOf(known)}
		observer := &recordingResolutions{}
		resolver := NewFieldResolver(fields, observer)

		field, err := resolver.Resolve(context.Background(), 12.5, 7.25)
		require.NoError(t, err)
		assert.Equal(t, "created", field.ID)

		field, err = resolver.Resolve(context.Background(), 12.5, 7.25)
		require.NoError(t, err)
		assert.Equal(t, "created", field.ID)

		assert.Equal(t, int32(1), fields.lists.Load())
		assert.Equal(t, int32(1), fields.creates.Load())
		assert.Equal(t, 2, resolver.Len())
		assert.Equal(t, []string{metrics.ResolutionCreated, metrics.ResolutionCached}, observer.outcomes)
	})

	t.Run("rounded center point is indexed under both keys", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{list: listOf(), round: true}
		resolver := NewFieldResolver(fields, nil)

		_, err := resolver.Resolve(context.Background(), 12.5, 7.25)
		require.NoError(t, err)

		_, err = resolver.Resolve(context.Background(), 12.5, 7.25)
		require.NoError(t, err)

		_, err = resolver.Resolve(context.Background(), 12, 7)
		require.NoError(t, err)

		assert.Equal(t, int32(1), fields.creates.Load())
		assert.Equal(t, 2, resolver.Len())
	})

	t.Run("listing failure is reported and retried next time", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{listErr: errListing}
		observer := &recordingResolutions{}
		resolver := NewFieldResolver(fields, observer)

		field, err := resolver.Resolve(context.Background(), 1, 1)
		require.ErrorIs(t, err, awhere.ErrFieldListing)
		require.ErrorIs(t, err, errListing)
		assert.Nil(t, field)
		assert.Equal(t, int32(0), fields.creates.Load())

		fields.mutex.Lock()
		fields.list = listOf(awhere.Field{ID: "one", CenterPoint: awhere.CenterPoint{Latitude: 1, Longitude: 1}})
		fields.listErr = nil
		fields.mutex.Unlock()

		field, err = resolver.Resolve(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Equal(t, "one", field.ID)
		assert.Equal(t, int32(2), fields.lists.Load())
		assert.Equal(t, []string{metrics.ResolutionFailed, metrics.ResolutionCached}, observer.outcomes)
	})

	t.Run("listing without a fields array is malformed", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{list: &awhere.FieldList{}}
		resolver := NewFieldResolver(fields, nil)

		_, err := resolver.Resolve(context.Background(), 1, 1)
		require.ErrorIs(t, err, awhere.ErrFieldListMalformed)
		assert.Equal(t, int32(0), fields.creates.Load())
	})

	t.Run("returned fields are copies", func(t *testing.T) {
		t.Parallel()

		resolver := NewFieldResolver(&stubFields{list: listOf(known)}, nil)

		field, err := resolver.Resolve(context.Background(), 39.7, -104.9)
		require.NoError(t, err)

		field.ID = "mutated"

		field, err = resolver.Resolve(context.Background(), 39.7, -104.9)
		require.NoError(t, err)
		assert.Equal(t, "known", field.ID)
	})

	t.Run("every page of the listing is indexed", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{pages: map[string]*awhere.FieldList{
			"": {
				Fields: []awhere.Field{{ID: "first", CenterPoint: awhere.CenterPoint{Latitude: 1, Longitude: 2}}},
				Links:  awhere.Links{"next": {Href: "/v2/fields?limit=1&offset=1"}},
			},
			"1": {
				Fields: []awhere.Field{{ID: "second", CenterPoint: awhere.CenterPoint{Latitude: 10, Longitude: 20}}},
			},
		}}
		resolver := NewFieldResolver(fields, nil)

		field, err := resolver.Resolve(context.Background(), 10, 20)
		require.NoError(t, err)
		assert.Equal(t, "second", field.ID)

		field, err = resolver.Resolve(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "first", field.ID)

		assert.Equal(t, int32(2), fields.lists.Load())
		assert.Equal(t, int32(0), fields.creates.Load())
	})

	t.Run("repeating next link is malformed", func(t *testing.T) {
		t.Parallel()

		looping := &awhere.FieldList{
			Fields: []awhere.Field{},
			Links:  awhere.Links{"next": {Href: "/v2/fields?offset=7"}},
		}
		fields := &stubFields{pages: map[string]*awhere.FieldList{"": looping, "7": looping}}
		resolver := NewFieldResolver(fields, nil)

		_, err := resolver.Resolve(context.Background(), 1, 2)
		require.ErrorIs(t, err, awhere.ErrFieldListMalformed)
		assert.Equal(t, int32(0), fields.creates.Load())
	})

	t.Run("cancelled caller does not fail the others", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{list: listOf(known), delay: 100 * time.Millisecond}
		resolver := NewFieldResolver(fields, nil)

		ctx, cancel := context.WithCancel(context.Background())
		first := make(chan error, 1)

		go func() {
			_, err := resolver.Resolve(ctx, 39.7, -104.9)
			first <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		field, err := resolver.Resolve(context.Background(), 39.7, -104.9)
		require.NoError(t, err)
		assert.Equal(t, "known", field.ID)

		require.ErrorIs(t, <-first, context.Canceled)
		assert.Equal(t, int32(1), fields.lists.Load())
	})

	t.Run("concurrent callers share the listing and the creation", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{list: listOf(known), delay: 20 * time.Millisecond}
		resolver := NewFieldResolver(fields, nil)

		var waitGroup sync.WaitGroup

		for range 16 {
			waitGroup.Add(1)

			go func() {
				defer waitGroup.Done()

				field, err := resolver.Resolve(context.Background(), 5.5, 6.5)
				assert.NoError(t, err)
				assert.Equal(t, "created", field.ID)
			}()
		}

		waitGroup.Wait()

		assert.Equal(t, int32(1), fields.lists.Load())
		assert.Equal(t, int32(1), fields.creates.Load())
	})
}

func TestFieldResolver_ResolveAsync(t *testing.T) {
	t.Parallel()

	t.Run("callback receives the field once", func(t *testing.T) {
		t.Parallel()

		resolver := NewFieldResolver(&stubFields{list: listOf()}, nil)

		var calls atomic.Int32

		done := make(chan *awhere.Field, 2)

		resolver.ResolveAsync(context.Background(), 3, 4, func(field *awhere.Field, err error) {
			assert.NoError(t, err)
			calls.Add(1)
			done <- field
		})

		select {
		case field := <-done:
			assert.Equal(t, "created", field.ID)
		case <-time.After(5 * time.Second):
			t.Fatal("callback was not invoked")
		}

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("zero coordinates never call back", func(t *testing.T) {
		t.Parallel()

		fields := &stubFields{list: listOf()}
		resolver := NewFieldResolver(fields, nil)

		var calls atomic.Int32

		resolver.ResolveAsync(context.Background(), 0, 4, func(*awhere.Field, error) { calls.Add(1) })
		resolver.ResolveAsync(context.Background(), 3, 4, nil)

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(0), calls.Load())
		assert.Equal(t, int32(0), fields.lists.Load())
	})
}

func TestFieldResolver_AgainstAPI(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.respond("GET", "/v2/fields", http.StatusOK, map[string]interface{}{
		"fields": []map[string]interface{}{
			{"id": "north", "centerPoint": map[string]float64{"latitude": 39.7, "longitude": -104.9}},
		},
	})
	api.handle("POST", "/v2/fields", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusCreated, decodeBody(t, request))
	})

	resolver := api.newClient().Resolver()

	field, err := resolver.Resolve(context.Background(), 39.7, -104.9)
	require.NoError(t, err)
	assert.Equal(t, "north", field.ID)

	created, err := resolver.Resolve(context.Background(), 41.2, -96.1)
	require.NoError(t, err)
	assert.Equal(t, "41.2,-96.1", created.CenterPoint.Key())

	again, err := resolver.Resolve(context.Background(), 41.2, -96.1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	assert.Equal(t, 1, api.count("GET", "/v2/fields"))
	assert.Equal(t, 1, api.count("POST", "/v2/fields"))
}

func TestFieldResolver_PagedAPI(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	api.handle("GET", "/v2/fields", func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("offset") == "2" {
			writeJSON(writer, http.StatusOK, map[string]interface{}{
				"fields": []map[string]interface{}{
					{"id": "page2", "centerPoint": map[string]float64{"latitude": 10, "longitude": 20}},
				},
			})

			return
		}

		writeJSON(writer, http.StatusOK, map[string]interface{}{
			"fields": []map[string]interface{}{
				{"id": "page1", "centerPoint": map[string]float64{"latitude": 1, "longitude": 2}},
			},
			"_links": map[string]interface{}{"next": map[string]string{"href": "/v2/fields?limit=2&offset=2"}},
		})
	})

	resolver := api.newClient().Resolver()

	field, err := resolver.Resolve(context.Background(), 10, 20)
	require.NoError(t, err)
	assert.Equal(t, "page2", field.ID)

	assert.Equal(t, 2, api.count("GET", "/v2/fields"))
	assert.Equal(t, 0, api.count("POST", "/v2/fields"))
}
