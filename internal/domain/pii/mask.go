package pii

import (
	"fmt"
	"sort"
	"strings"
)

// Mask replaces each entity span with a stable placeholder keyed by type and
// ordinal index, e.g. [PERSON_1]. A value that appears more than once reuses
// its placeholder.
func Mask(text string, entities []Entity) (string, *Mapping) {
	mapping := newMapping()
	if len(entities) == 0 {
		return text, mapping
	}

	ordered := make([]Entity, len(entities))
	copy(ordered, entities)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	counters := map[EntityType]int{}
	var builder strings.Builder
	cursor := 0
	for _, entity := range ordered {
		if entity.Start < cursor {
			continue
		}
		builder.WriteString(text[cursor:entity.Start])

		placeholder, ok := mapping.Placeholder(entity.Value)
		if !ok {
			counters[entity.Type]++
			placeholder = fmt.Sprintf("[%s_%d]", entity.Type, counters[entity.Type])
			mapping.add(placeholder, entity.Value)
		}
		builder.WriteString(placeholder)
		cursor = entity.End
	}
	builder.WriteString(text[cursor:])

	return builder.String(), mapping
}

// Restore substitutes placeholders in model output back to their original
// values. It is a pure string operation with no persistence.
func Restore(text string, mapping *Mapping) string {
	if mapping == nil || mapping.Len() == 0 {
		return text
	}
	pairs := make([]string, 0, mapping.Len()*2)
	for placeholder, value := range mapping.byPlaceholder {
		pairs = append(pairs, placeholder, value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
