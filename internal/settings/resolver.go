package settings

// Resolve returns the effective window for name: the override if one exists,
// otherwise the global default. The second result reports whether an override
// applied.
//
// The result is computed fresh on every call. There is no caching layer, so a
// change to the global window is reflected by the very next Resolve for every
// name without an override.
func (s *Store) Resolve(name string) (Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.state.Overrides[name]; ok {
		return w, true
	}
	return s.state.Global, false
}
