package search

import (
	"strings"
	"testing"
)

func TestSeedQueries_EntityQueries(t *testing.T) {
	queries := SeedQueries("New tariffs on imported steel announced", []string{"China", "Jerome Powell"}, 5)

	if len(queries) != 3 {
		t.Fatalf("Expected 3 queries, got %d: %v", len(queries), queries)
	}
	if !strings.Contains(queries[1], "China") {
		t.Errorf("Expected entity query for China, got %s", queries[1])
	}
	if !strings.Contains(queries[2], "Jerome Powell") {
		t.Errorf("Expected entity query for Jerome Powell, got %s", queries[2])
	}
}

func TestSeedQueries_CapsAtMax(t *testing.T) {
	entities := []string{"a", "b", "c", "d", "e", "f", "g"}
	queries := SeedQueries("some batch text", entities, 5)
	if len(queries) != 5 {
		t.Errorf("Expected 5 queries, got %d", len(queries))
	}
}

func TestSeedQueries_EmptyInputFallsBack(t *testing.T) {
	queries := SeedQueries("", nil, 5)
	if len(queries) != 1 {
		t.Fatalf("Expected 1 fallback query, got %d", len(queries))
	}
}

func TestFollowUpQueries_SkipsAlreadyQueried(t *testing.T) {
	queries := FollowUpQueries(
		[]string{"Venezuela", "Iran", "China"},
		[]string{"iran"},
		5,
	)

	if len(queries) != 2 {
		t.Fatalf("Expected 2 queries, got %d: %v", len(queries), queries)
	}
	for _, q := range queries {
		if strings.Contains(strings.ToLower(q), "iran") {
			t.Errorf("Already-queried entity regenerated: %s", q)
		}
	}
}

func TestFollowUpQueries_DedupesNewEntities(t *testing.T) {
	queries := FollowUpQueries([]string{"China", "china", "CHINA"}, nil, 5)
	if len(queries) != 1 {
		t.Errorf("Expected 1 query after dedupe, got %d: %v", len(queries), queries)
	}
}
