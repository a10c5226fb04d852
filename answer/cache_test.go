package answer

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCache_RoundTripAndExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	q := Query{Question: "Who maintains common areas?", TopK: 6}

	miss, err := cache.Get(context.Background(), q)
	require.NoError(t, err)
	assert.Nil(t, miss)

	want := &Answer{
		Answer:     "The association.",
		Sources:    []Source{{Title: ptr("Apartment Ownership Act"), Page: ptr(2)}},
		Confidence: FoundConfidence,
	}
	require.NoError(t, cache.Set(context.Background(), q, want))

	got, err := cache.Get(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := cache.Get(context.Background(), Query{Question: q.Question, TopK: 3})
	require.NoError(t, err)
	assert.Nil(t, other, "top_k is part of the key")

	mr.FastForward(2 * time.Minute)
	expired, err := cache.Get(context.Background(), q)
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	q := Query{Question: "q", TopK: 1}
	require.NoError(t, mr.Set(cacheKey(q), "{not json"))

	_, err := cache.Get(context.Background(), q)
	require.Error(t, err)
}

func TestHandle_UsesCache(t *testing.T) {
	cache, _ := newTestCache(t)
	embedder := &fakeEmbedder{}
	synth := &fakeSynthesizer{text: "cached answer"}
	o := New(embedder, &fakeRetriever{chunks: legalChunks()}, synth, WithCache(cache))

	q := Query{Question: "notice period?", TopK: 6}
	first, err := o.Handle(context.Background(), q)
	require.NoError(t, err)
	second, err := o.Handle(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, 1, synth.calls)
}

func TestHandle_CacheFailureIsNotFatal(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	synth := &fakeSynthesizer{text: "fresh"}
	o := New(&fakeEmbedder{}, &fakeRetriever{chunks: legalChunks()}, synth, WithCache(cache))

	got, err := o.Handle(context.Background(), Query{Question: "q", TopK: 6})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Answer)
}

func TestHandle_EmptyResultNotCached(t *testing.T) {
	cache, mr := newTestCache(t)
	o := New(&fakeEmbedder{}, &fakeRetriever{}, &fakeSynthesizer{}, WithCache(cache))

	_, err := o.Handle(context.Background(), Query{Question: "q", TopK: 6})
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())
}
