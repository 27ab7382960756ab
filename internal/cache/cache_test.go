package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Fatal("New() returned nil")
	}
}

func TestGetSet(t *testing.T) {
	c := New()
	c.Set("key", 42)

	val, found := c.Get("key")
	if !found {
		t.Fatal("expected key to be found")
	}
	if val.(int) != 42 {
		t.Errorf("got %v, want 42", val)
	}
}

func TestGet_Missing(t *testing.T) {
	c := New()
	_, found := c.Get("missing")
	if found {
		t.Error("expected missing key to not be found")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")

	if _, found := c.Get("a"); found {
		t.Error("expected a to be deleted")
	}
	if _, found := c.Get("b"); !found {
		t.Error("expected b to survive")
	}
}

func TestFlush(t *testing.T) {
	c := New()
	c.Set("key", "value")
	c.Flush()

	_, found := c.Get("key")
	if found {
		t.Error("expected key to be gone after Flush")
	}
}

func TestGetOrLoad_MissThenHit(t *testing.T) {
	c := New()
	calls := 0
	load := func(context.Context) (any, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	v, hit, err := c.GetOrLoad(context.Background(), "repos:org:octo", load)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first load should be a miss")
	}
	if got := v.([]string); len(got) != 2 {
		t.Errorf("got %v", got)
	}

	_, hit, err = c.GetOrLoad(context.Background(), "repos:org:octo", load)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second load should be a hit")
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	s := c.Stats()
	if s.Entries != 1 || s.Hits != 1 || s.Misses != 1 {
		t.Errorf("stats = %+v, want 1 entry, 1 hit, 1 miss", s)
	}
}

func TestGetOrLoad_ErrorLeavesCacheUntouched(t *testing.T) {
	c := New()
	c.Set("other", "keep")

	_, _, err := c.GetOrLoad(context.Background(), "key", func(context.Context) (any, error) {
		return nil, errors.New("fetch failed")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, found := c.Get("key"); found {
		t.Error("failed load must not store anything")
	}
	if v, _ := c.Get("other"); v != "keep" {
		t.Error("unrelated entries must survive a failed load")
	}
}

func TestGetOrLoad_CollapsesConcurrentMisses(t *testing.T) {
	c := New()
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.GetOrLoad(context.Background(), "key", func(context.Context) (any, error) {
				calls.Add(1)
				<-release
				return 1, nil
			})
		}()
	}

	// Give the goroutines time to pile up behind the first load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("load called %d times, want 1", n)
	}
}

func TestEntriesDoNotExpire(t *testing.T) {
	c := New()
	c.Set("key", "value")
	items := c.inner.Items()
	if items["key"].Expiration != 0 {
		t.Errorf("expiration = %d, want 0 (never)", items["key"].Expiration)
	}
}

func TestDeletePrefix(t *testing.T) {
	c := New()
	c.Set("traffic:octo/a", 1)
	c.Set("traffic:octo/b", 2)
	c.Set("traffic:other/a", 3)

	if n := c.DeletePrefix("traffic:octo/"); n != 2 {
		t.Errorf("removed %d keys, want 2", n)
	}
	if _, found := c.Get("traffic:octo/a"); found {
		t.Error("expected traffic:octo/a to be deleted")
	}
	if _, found := c.Get("traffic:other/a"); !found {
		t.Error("expected traffic:other/a to survive")
	}
}

func TestGetOrLoad_CancelledCallerLeavesLoadRunning(t *testing.T) {
	c := New()
	release := make(chan struct{})
	started := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrLoad(ctx, "key", func(loadCtx context.Context) (any, error) {
			close(started)
			<-release
			return "value", loadCtx.Err()
		})
		done <- err
	}()

	<-started
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}

	close(release)
	deadline := time.Now().Add(time.Second)
	for {
		if v, found := c.Get("key"); found {
			if v != "value" {
				t.Errorf("got %v, want value", v)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("load did not finish after its caller left")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGetOrLoad_DoneContextSkipsLoad(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.GetOrLoad(ctx, "key", func(context.Context) (any, error) {
		t.Error("load should not run for a done context")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
