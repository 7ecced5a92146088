package tml

// orderedMap preserves insertion order while still offering O(1) lookup by
// name — the shape §3 requires for Elements/Data/Threats/Measures ordered
// maps and for Interaction sources/targets/data.
type orderedMap[V any] struct {
	index  map[string]int
	keys   []string
	values []V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{index: map[string]int{}}
}

func (m *orderedMap[V]) Get(key string) (V, bool) {
	var zero V
	i, ok := m.index[key]
	if !ok {
		return zero, false
	}
	return m.values[i], true
}

func (m *orderedMap[V]) Set(key string, value V) {
	if i, ok := m.index[key]; ok {
		m.values[i] = value
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

func (m *orderedMap[V]) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Delete removes key, if present, preserving the relative order of the
// remaining keys.
func (m *orderedMap[V]) Delete(key string) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	delete(m.index, key)
	for k, idx := range m.index {
		if idx > i {
			m.index[k] = idx - 1
		}
	}
}

func (m *orderedMap[V]) Len() int {
	return len(m.keys)
}

func (m *orderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *orderedMap[V]) Values() []V {
	out := make([]V, len(m.values))
	copy(out, m.values)
	return out
}

// reorder rebuilds the map in the given key order. Keys not present in
// newOrder are dropped; this is only ever called with a permutation of the
// existing keys (§4.6 finalization).
func (m *orderedMap[V]) reorder(newOrder []string) {
	values := make([]V, 0, len(newOrder))
	index := make(map[string]int, len(newOrder))
	for _, k := range newOrder {
		v, ok := m.Get(k)
		if !ok {
			continue
		}
		index[k] = len(values)
		values = append(values, v)
	}
	m.keys = append([]string(nil), newOrder...)
	m.values = values
	m.index = index
}
