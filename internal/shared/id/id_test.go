package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestNewQueryID(t *testing.T) {
	qid := NewQueryID()

	if !strings.HasPrefix(qid.String(), "qry_") {
		t.Errorf("QueryID should start with 'qry_', got: %s", qid)
	}
	if !qid.Valid() {
		t.Errorf("QueryID should be valid: %s", qid)
	}
}

func TestQueryIDValid(t *testing.T) {
	tests := []struct {
		id   QueryID
		want bool
	}{
		{"", false},
		{"qry_", false},
		{"qry_not-a-ulid", false},
		{"app_01ARZ3NDEKTSV4RRFFQ69G5FAV", false},
		{"qry_01ARZ3NDEKTSV4RRFFQ69G5FAV", true},
	}

	for _, tt := range tests {
		if got := tt.id.Valid(); got != tt.want {
			t.Errorf("QueryID(%q).Valid() = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestQueryIDsSortInIssueOrder(t *testing.T) {
	gen := NewGenerator()

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.GenerateWithPrefix(QueryPrefix)
	}

	if !sort.StringsAreSorted(ids) {
		t.Error("IDs from one generator should be lexicographically increasing")
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	qid := NewQueryID()

	ts, err := qid.Timestamp()
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Errorf("Timestamp %v out of range", ts)
	}
}

func TestConcurrentGeneration(t *testing.T) {
	const n = 1000
	var (
		mu   sync.Mutex
		seen = make(map[QueryID]bool, n)
		wg   sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qid := NewQueryID()
			mu.Lock()
			seen[qid] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("Expected %d unique IDs, got %d", n, len(seen))
	}
}
