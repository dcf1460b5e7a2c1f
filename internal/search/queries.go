package search

import (
	"fmt"
	"strings"
	"time"
)

// SeedQueries derives the first-iteration query set from a claim batch and
// the entities extracted from it: one direct-context query per batch plus
// one query per entity, capped at maxQueries.
func SeedQueries(batchText string, entities []string, maxQueries int) []string {
	if maxQueries <= 0 {
		maxQueries = 5
	}

	var queries []string

	context := strings.TrimSpace(batchText)
	if len(context) > 60 {
		context = context[:60]
	}
	if context != "" {
		queries = append(queries, context)
	}

	month := time.Now().UTC().Format("January 2006")
	for _, entity := range entities {
		if len(queries) >= maxQueries {
			break
		}
		queries = append(queries, fmt.Sprintf("%s news %s", entity, month))
	}

	if len(queries) == 0 {
		queries = append(queries, "latest policy developments today")
	}
	return queries
}

// FollowUpQueries regenerates queries for later loop iterations from
// entities newly observed in the accumulated evidence. Entities already
// queried are skipped so the loop widens rather than repeats.
func FollowUpQueries(newEntities, alreadyQueried []string, maxQueries int) []string {
	if maxQueries <= 0 {
		maxQueries = 5
	}

	seen := make(map[string]bool, len(alreadyQueried))
	for _, e := range alreadyQueried {
		seen[strings.ToLower(e)] = true
	}

	var queries []string
	for _, entity := range newEntities {
		if seen[strings.ToLower(entity)] {
			continue
		}
		seen[strings.ToLower(entity)] = true
		queries = append(queries, fmt.Sprintf("%s latest developments", entity))
		if len(queries) >= maxQueries {
			break
		}
	}
	return queries
}
