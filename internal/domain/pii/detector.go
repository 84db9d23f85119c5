package pii

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Detector runs the rule set in one deterministic pass under a wall-clock
// budget. It is stateless and safe for concurrent use.
type Detector struct {
	budget time.Duration
}

func NewDetector(budget time.Duration) *Detector {
	return &Detector{budget: budget}
}

// Detect returns the detected entities ordered by position. It checks the
// budget between rules and fails with ErrDetectionTimeout when exceeded so
// the caller can apply its fail-open or fail-closed policy.
func (d *Detector) Detect(ctx context.Context, text string) ([]Entity, error) {
	start := time.Now()

	var candidates []Entity
	for _, p := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, ErrDetectionTimeout
		}
		if d.budget > 0 && time.Since(start) > d.budget {
			return nil, ErrDetectionTimeout
		}
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			entity := Entity{Type: p.entityType, Start: loc[0], End: loc[1], Value: text[loc[0]:loc[1]]}
			if p.entityType == TypePerson {
				trimmed, ok := trimPersonCandidate(entity)
				if !ok {
					continue
				}
				entity = trimmed
			}
			candidates = append(candidates, entity)
		}
	}

	return resolveOverlaps(candidates), nil
}

// trimPersonCandidate drops leading non-name words from a title-case run.
// A candidate must keep at least two words to count as a person name.
func trimPersonCandidate(entity Entity) (Entity, bool) {
	words := strings.Split(entity.Value, " ")
	offset := 0
	for len(words) > 0 && personStopwords[words[0]] {
		offset += len(words[0]) + 1
		words = words[1:]
	}
	if len(words) < 2 {
		return Entity{}, false
	}
	start := entity.Start + offset
	return Entity{Type: TypePerson, Start: start, End: entity.End, Value: entity.Value[offset:]}, true
}

// resolveOverlaps keeps the strongest match when spans collide, then orders
// the survivors by position.
func resolveOverlaps(candidates []Entity) []Entity {
	ranked := make([]Entity, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if typePriority(ranked[i].Type) != typePriority(ranked[j].Type) {
			return typePriority(ranked[i].Type) < typePriority(ranked[j].Type)
		}
		if ranked[i].Start != ranked[j].Start {
			return ranked[i].Start < ranked[j].Start
		}
		return ranked[i].End-ranked[i].Start > ranked[j].End-ranked[j].Start
	})

	var kept []Entity
	for _, candidate := range ranked {
		overlaps := false
		for _, existing := range kept {
			if candidate.Start < existing.End && existing.Start < candidate.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, candidate)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

func typePriority(t EntityType) int {
	for _, p := range patterns {
		if p.entityType == t {
			return p.priority
		}
	}
	return len(patterns)
}

// Types returns the distinct entity types in order of first appearance,
// comma-joined for audit metadata.
func Types(entities []Entity) string {
	var seen []string
	has := map[EntityType]bool{}
	for _, e := range entities {
		if !has[e.Type] {
			has[e.Type] = true
			seen = append(seen, string(e.Type))
		}
	}
	return strings.Join(seen, ",")
}
