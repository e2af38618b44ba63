package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"DR-CONTRACTS/internal/engine"
)

func countingParse(calls *int32) ParseFunc {
	return func(src string) (*engine.Tree, error) {
		atomic.AddInt32(calls, 1)
		return engine.Parse(src)
	}
}

func TestGetParsesOnce(t *testing.T) {
	var calls int32
	c := New(4, countingParse(&calls))

	first, err := c.Get("{{client.fullName}}")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Get("{{client.fullName}}")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("expected the cached tree to be returned")
	}
	if calls != 1 {
		t.Fatalf("expected 1 parse, got %d", calls)
	}
}

func TestGetConcurrent(t *testing.T) {
	var calls int32
	c := New(4, countingParse(&calls))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get("{{#each dresses}}{{this.name}}{{/each}}"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 parse, got %d", got)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	var calls int32
	c := New(4, countingParse(&calls))

	for i := 0; i < 2; i++ {
		_, err := c.Get("{{#if x}}")
		var perrs engine.ParseErrors
		if !errors.As(err, &perrs) {
			t.Fatalf("expected parse errors, got %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected 2 parses, got %d", calls)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Len())
	}
}

func TestEviction(t *testing.T) {
	var calls int32
	c := New(2, countingParse(&calls))

	mustGet := func(src string) {
		t.Helper()
		if _, err := c.Get(src); err != nil {
			t.Fatal(err)
		}
	}
	mustGet("a")
	mustGet("b")
	mustGet("a") // a is now most recent
	mustGet("c") // evicts b

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	mustGet("a")
	if calls != 3 {
		t.Fatalf("expected a to stay cached, got %d parses", calls)
	}
	mustGet("b")
	if calls != 4 {
		t.Fatalf("expected b to be re-parsed, got %d parses", calls)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d", c.Len())
	}
}

func TestKeyIsContentHash(t *testing.T) {
	if Key("x") != Key("x") || Key("x") == Key("y") {
		t.Fatal("key must depend only on content")
	}
	if len(Key("")) != 64 {
		t.Fatalf("unexpected key length %d", len(Key("")))
	}
}
