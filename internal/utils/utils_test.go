package utils

import (
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Inception", "inception"},
		{"The Dark Knight", "the-dark-knight"},
		{"Spider-Man: No Way Home", "spider-man-no-way-home"},
		{"  2001: A Space Odyssey  ", "2001-a-space-odyssey"},
		{"WALL·E", "wall-e"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTTLCacheGetSet(t *testing.T) {
	c := NewTTLCache[[]int](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("Get on empty cache should miss")
	}

	c.Set("pool", []int{1, 2, 3})
	got, ok := c.Get("pool")
	if !ok {
		t.Fatal("Get after Set should hit")
	}
	if len(got) != 3 || got[0] != 1 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}

	c.Delete("pool")
	if _, ok := c.Get("pool"); ok {
		t.Fatal("Get after Delete should miss")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string](4, 10*time.Millisecond)
	c.Set("k", "v")

	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry still counted, Len = %d", c.Len())
	}
}

func TestTTLCacheEviction(t *testing.T) {
	c := NewTTLCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after eviction", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest entry should have been evicted")
	}
}

func TestTTLCacheClear(t *testing.T) {
	c := NewTTLCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len = %d after Clear, want 0", c.Len())
	}
}
