package cache

import "testing"

func TestCompileCachesBySource(t *testing.T) {
	c := New()
	p1, err := c.Compile("1 + 1")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	p2, err := c.Compile("1 + 1")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p1 != p2 {
		t.Errorf("expected the same *program.Program pointer on a repeated source string")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 cached entry, got %d", c.Len())
	}
}

func TestCompileDistinctSources(t *testing.T) {
	c := New()
	if _, err := c.Compile("1 + 1"); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := c.Compile("2 + 2"); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 cached entries, got %d", c.Len())
	}
}

func TestCompilePropagatesParseError(t *testing.T) {
	c := New()
	if _, err := c.Compile("1 +"); err == nil {
		t.Errorf("expected parse error to propagate")
	}
	if c.Len() != 0 {
		t.Errorf("expected a parse error not to be cached, got %d entries", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := New()
	if _, err := c.Compile("1 + 1"); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected 0 entries after Clear, got %d", c.Len())
	}
}
