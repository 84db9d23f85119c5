package pii

// Mapping is the bidirectional placeholder association for one redact/restore
// cycle. It lives in memory only, is scoped to a single gateway invocation,
// and must never be logged, persisted or shared across calls.
type Mapping struct {
	byPlaceholder map[string]string
	byValue       map[string]string
}

func newMapping() *Mapping {
	return &Mapping{
		byPlaceholder: map[string]string{},
		byValue:       map[string]string{},
	}
}

func (m *Mapping) add(placeholder, value string) {
	m.byPlaceholder[placeholder] = value
	m.byValue[value] = placeholder
}

func (m *Mapping) Original(placeholder string) (string, bool) {
	value, ok := m.byPlaceholder[placeholder]
	return value, ok
}

func (m *Mapping) Placeholder(value string) (string, bool) {
	placeholder, ok := m.byValue[value]
	return placeholder, ok
}

func (m *Mapping) Len() int {
	return len(m.byPlaceholder)
}
