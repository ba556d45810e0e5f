package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

type fakeRedis struct {
	data    map[string]string
	readErr error
}

func (f *fakeRedis) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	if f.readErr != nil {
		return redis.NewSliceResult(nil, f.readErr)
	}
	vals := make([]interface{}, len(keys))
	for i, k := range keys {
		if v, ok := f.data[k]; ok {
			vals[i] = v
		}
	}
	return redis.NewSliceResult(vals, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

type countingEmbedder struct{ seen []string }

func (c *countingEmbedder) ModelName() string { return "m" }

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.seen = append(c.seen, texts...)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 0.5}
	}
	return out, nil
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0.25, -1.5, 3.14159}
	got, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("decode(encode(v)) = %v", got)
	}
	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated vector")
	}
}

func TestEmbeddingCache_HitsAndMissesKeepOrder(t *testing.T) {
	inner := &countingEmbedder{}
	c := &EmbeddingCache{next: inner, rdb: &fakeRedis{data: map[string]string{}}, ttl: time.Hour}
	ctx := context.Background()

	if _, err := c.EmbedBatch(ctx, []string{"bb"}); err != nil {
		t.Fatal(err)
	}
	inner.seen = nil

	got, err := c.EmbedBatch(ctx, []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float32{{1, 0.5}, {2, 0.5}, {3, 0.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EmbedBatch() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(inner.seen, []string{"a", "ccc"}) {
		t.Errorf("provider saw %v, want only misses", inner.seen)
	}
}

func TestEmbeddingCache_ReadFailureFallsThrough(t *testing.T) {
	inner := &countingEmbedder{}
	c := &EmbeddingCache{next: inner, rdb: &fakeRedis{data: map[string]string{}, readErr: errors.New("conn refused")}, ttl: time.Hour}

	got, err := c.EmbedBatch(context.Background(), []string{"x", "yy"})
	if err != nil {
		t.Fatalf("cache failure must not fail the batch: %v", err)
	}
	if len(got) != 2 || len(inner.seen) != 2 {
		t.Errorf("got %v, provider saw %v", got, inner.seen)
	}
}
