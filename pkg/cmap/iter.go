package cmap

// Range calls fn for every key-value pair until fn returns false.
//
// fn runs under the shard's read lock and must not call back into the map.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Keys returns all keys in unspecified order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Filter returns a copy of the pairs for which keep returns true.
func (m *Map[K, V]) Filter(keep func(key K, value V) bool) map[K]V {
	out := make(map[K]V)
	m.Range(func(key K, value V) bool {
		if keep(key, value) {
			out[key] = value
		}
		return true
	})
	return out
}
