package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/cache"
)

func newRedis(t *testing.T, ttl time.Duration) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewRedis(mr.Addr(), "", 0, ttl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedis(t, time.Hour)

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, ok, err := c.Get(ctx, "https://example.test/a.csv"); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, "https://example.test/a.csv", []byte("pin\n1\n")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "https://example.test/a.csv")
	if err != nil || !ok || string(got) != "pin\n1\n" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}
}

func TestRedisTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedis(t, time.Minute)

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(cache.Key("k")); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
}

func TestRedisUnavailable(t *testing.T) {
	c, mr := newRedis(t, time.Minute)
	mr.Close()
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Error("expected an error from a closed server")
	}
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	if err := c.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(context.Background(), "k"); ok {
		t.Error("Nop should never hit")
	}
}

func TestKeyIsStable(t *testing.T) {
	a, b := cache.Key("https://x/y?q=1"), cache.Key("https://x/y?q=1")
	if a != b || len(a) > 100 {
		t.Errorf("Key = %q / %q", a, b)
	}
	if cache.Key("https://x/y?q=2") == a {
		t.Error("different URLs share a key")
	}
}
