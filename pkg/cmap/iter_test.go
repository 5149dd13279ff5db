package cmap

import (
	"sort"
	"strings"
	"testing"
)

func TestRange(t *testing.T) {
	m := New[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 6 {
		t.Errorf("sum = %d, want 6", sum)
	}
}

func TestRangeEarlyStop(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 50; i++ {
		m.Set(i, i)
	}

	visited := 0
	m.Range(func(_, _ int) bool {
		visited++
		return visited < 5
	})
	if visited != 5 {
		t.Errorf("visited = %d, want 5", visited)
	}
}

func TestKeys(t *testing.T) {
	m := New[string, int]()
	m.Set("x", 1)
	m.Set("y", 2)

	keys := m.Keys()
	sort.Strings(keys)
	if strings.Join(keys, ",") != "x,y" {
		t.Errorf("Keys() = %v, want [x y]", keys)
	}
}

func TestFilter(t *testing.T) {
	m := New[string, int]()
	m.Set("task/a", 1)
	m.Set("task/b", 2)
	m.Set("run/a", 3)

	got := m.Filter(func(k string, _ int) bool {
		return strings.HasPrefix(k, "task/")
	})
	if len(got) != 2 || got["task/a"] != 1 || got["task/b"] != 2 {
		t.Errorf("Filter() = %v", got)
	}
}
