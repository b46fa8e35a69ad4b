package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestCacheGetOrCreateBuildsOnce(t *testing.T) {
	c := New[uint64, string]()
	builds := 0
	build := func() (string, error) {
		builds++
		return "program", nil
	}

	for i := 0; i < 10; i++ {
		v, err := c.GetOrCreate(7, build)
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		if v != "program" {
			t.Fatalf("GetOrCreate() = %q, want %q", v, "program")
		}
	}
	if builds != 1 {
		t.Errorf("build ran %d times, want 1", builds)
	}

	s := c.Stats()
	if s.Len != 1 || s.Builds != 1 || s.Hits != 9 || s.Misses != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCacheGetOrCreateFailureLeavesNoEntry(t *testing.T) {
	c := New[int, int]()
	errBuild := errors.New("compile failed")

	_, err := c.GetOrCreate(1, func() (int, error) { return 0, errBuild })
	if !errors.Is(err, errBuild) {
		t.Fatalf("GetOrCreate() error = %v, want %v", err, errBuild)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after failed build, want 0", c.Len())
	}

	// The next attempt retries the build.
	attempts := 0
	v, err := c.GetOrCreate(1, func() (int, error) {
		attempts++
		return 42, nil
	})
	if err != nil || v != 42 || attempts != 1 {
		t.Errorf("retry = %d, %v (attempts %d)", v, err, attempts)
	}
	if s := c.Stats(); s.Failures != 1 || s.Builds != 1 {
		t.Errorf("Stats() = %+v, want 1 failure and 1 build", s)
	}
}

func TestCacheClearKeepsCounters(t *testing.T) {
	c := New[int, int]()
	build := func() (int, error) { return 1, nil }
	_, _ = c.GetOrCreate(1, build)
	_, _ = c.GetOrCreate(2, build)
	_, _ = c.GetOrCreate(1, build)

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if s := c.Stats(); s.Hits != 1 || s.Misses != 2 || s.Builds != 2 {
		t.Errorf("Stats() after Clear = %+v, want 1 hit, 2 misses, 2 builds", s)
	}

	builds := 0
	_, _ = c.GetOrCreate(1, func() (int, error) {
		builds++
		return 1, nil
	})
	if builds != 1 {
		t.Errorf("build after Clear ran %d times, want 1", builds)
	}
}

func TestCacheConcurrentGetOrCreate(t *testing.T) {
	c := New[int, int]()
	var mu sync.Mutex
	builds := 0

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrCreate(1, func() (int, error) {
				mu.Lock()
				builds++
				mu.Unlock()
				return 1, nil
			})
		}()
	}
	wg.Wait()

	if builds != 1 {
		t.Errorf("build ran %d times, want 1", builds)
	}
}

func BenchmarkCacheGetOrCreate(b *testing.B) {
	c := New[int, int]()
	build := func() (int, error) { return 1, nil }
	for i := 0; i < 100; i++ {
		_, _ = c.GetOrCreate(i, build)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.GetOrCreate(i%100, build)
	}
}
