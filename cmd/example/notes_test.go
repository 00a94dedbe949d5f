package main

import (
	"context"
	"sync"
	"testing"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/igniter-hq/igniter-go/apperror"
	"github.com/igniter-hq/igniter-go/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a minimal in-process Store fake for exercising notesController
// without a real Redis instance.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
	sets map[string]map[string]struct{}
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string), sets: make(map[string]map[string]struct{})}
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key, value string, ttlSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok, nil
}

func (s *memStore) Incr(ctx context.Context, key string) (int64, error) {
	return 0, apperror.StoreNotConfigured()
}

func (s *memStore) Expire(ctx context.Context, key string, ttlSeconds int) error { return nil }

func (s *memStore) Publish(ctx context.Context, channel, message string) error { return nil }

func (s *memStore) Subscribe(ctx context.Context, channel string, handler func(string)) (func(), error) {
	return func() {}, nil
}

func (s *memStore) SAdd(ctx context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (s *memStore) SRem(ctx context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(set, m)
	}
	return nil
}

func (s *memStore) SMembers(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.sets[key]
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out, nil
}

func newTestNotesApp(t *testing.T) (*igniter.Application, *memStore) {
	t.Helper()
	st := newMemStore()
	app := igniter.New().
		Store(st).
		Controller("notes", newNotesController()).
		Create()
	return app, st
}

func rawNotesReq(method, path string, body []byte, apiKey string) igniter.RawRequest {
	headers := map[string][]string{}
	if apiKey != "" {
		headers["X-Api-Key"] = []string{apiKey}
	}
	return igniter.RawRequest{
		Method:  method,
		Path:    path,
		Headers: headers,
		ReadBody: func(int64) ([]byte, error) {
			return body, nil
		},
	}
}

func TestNotesControllerRejectsMissingAPIKey(t *testing.T) {
	app, _ := newTestNotesApp(t)
	res := app.Router().Dispatch(rawNotesReq("GET", "/notes", nil, ""))
	assert.Equal(t, 401, res.StatusCode())
}

func TestNotesControllerCreateListGetUpdate(t *testing.T) {
	app, _ := newTestNotesApp(t)

	createRes := app.Router().Dispatch(rawNotesReq("POST", "/notes", []byte(`{"title":"First","body":"hello"}`), "k"))
	require.Equal(t, 201, createRes.StatusCode())
	created, ok := createRes.BodyValue().(*Note)
	require.True(t, ok)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "First", created.Title)

	listRes := app.Router().Dispatch(rawNotesReq("GET", "/notes", nil, "k"))
	require.Equal(t, 200, listRes.StatusCode())
	listBody, ok := listRes.BodyValue().([]*Note)
	require.True(t, ok)
	require.Len(t, listBody, 1)
	assert.Equal(t, created.ID, listBody[0].ID)

	getRes := app.Router().Dispatch(rawNotesReq("GET", "/notes/"+created.ID, nil, "k"))
	require.Equal(t, 200, getRes.StatusCode())
	fetched, ok := getRes.BodyValue().(*Note)
	require.True(t, ok)
	assert.Equal(t, "hello", fetched.Body)

	updateRes := app.Router().Dispatch(rawNotesReq("PATCH", "/notes/"+created.ID, []byte(`{"title":"Updated"}`), "k"))
	require.Equal(t, 200, updateRes.StatusCode())
	updated, ok := updateRes.BodyValue().(*Note)
	require.True(t, ok)
	assert.Equal(t, "Updated", updated.Title)
	assert.Equal(t, "hello", updated.Body)
}

func TestNotesControllerGetMissingReturnsNotFound(t *testing.T) {
	app, _ := newTestNotesApp(t)
	res := app.Router().Dispatch(rawNotesReq("GET", "/notes/missing", nil, "k"))
	assert.Equal(t, 404, res.StatusCode())
}

func TestNotesControllerCreateValidationFailure(t *testing.T) {
	app, _ := newTestNotesApp(t)
	res := app.Router().Dispatch(rawNotesReq("POST", "/notes", []byte(`{"title":""}`), "k"))
	assert.Equal(t, 400, res.StatusCode())
}

func TestNotesControllerWatchStreamSendsReadyFrame(t *testing.T) {
	app, _ := newTestNotesApp(t)
	action, params, ok := app.Router().MatchStream("/notes/watch")
	require.True(t, ok)
	assert.Empty(t, params)

	conn, appErr := app.ExecuteStream(action, rawNotesReq("GET", "/notes/watch", nil, "k"), nil, nil, "")
	require.Nil(t, appErr)
	defer conn.Close()

	frame := <-conn.Frames()
	assert.Equal(t, "ready", frame.Event)
}
