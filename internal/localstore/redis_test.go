package localstore

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/errors"
)

type stubRedis struct {
	values map[string]string
	setErr error
	closed bool
}

func newStubRedis() *stubRedis {
	return &stubRedis{values: map[string]string{}}
}

func (s *stubRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *stubRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if s.setErr != nil {
		return redis.NewStatusResult("", s.setErr)
	}
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Close() error {
	s.closed = true
	return nil
}

func TestRedisKV_RoundTripWithPrefix(t *testing.T) {
	ctx := context.Background()
	client := newStubRedis()
	kv := NewRedisKV(client, "")

	_, err := kv.Get(ctx, "appliedJobs")
	assert.True(t, errors.Is(err, ErrKeyNotFound))

	require.NoError(t, kv.Put(ctx, "appliedJobs", []byte(`["3"]`)))
	assert.Equal(t, `["3"]`, client.values["jobboard:appliedJobs"])

	got, err := kv.Get(ctx, "appliedJobs")
	require.NoError(t, err)
	assert.Equal(t, `["3"]`, string(got))

	require.NoError(t, kv.Close())
	assert.True(t, client.closed)
}

func TestRedisKV_SetError(t *testing.T) {
	client := newStubRedis()
	client.setErr = errors.New("READONLY")
	kv := NewRedisKV(client, "test:")

	err := kv.Put(context.Background(), "appliedJobs", []byte(`[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")
}

func TestDialRedis_InvalidURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not a url")
	assert.Error(t, err)
}
