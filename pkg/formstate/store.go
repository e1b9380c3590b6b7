package formstate

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Store holds the current State. It is not safe for concurrent use; the
// owning session serialises every call. The zero value is an empty store.
type Store struct {
	current State
}

// NewStore seeds a store with initial values.
func NewStore(initial Update) (*Store, error) {
	store := &Store{}
	if len(initial) == 0 {
		return store, nil
	}
	if _, err := store.Merge(initial); err != nil {
		return nil, err
	}
	return store, nil
}

// Snapshot returns the current immutable State.
func (s *Store) Snapshot() State {
	if s == nil {
		return State{}
	}
	return s.current
}

// Merge applies a shallow, key-wise update and returns the new snapshot.
// Keys that are not form fields are dropped. When any supplied value cannot be
// coerced to its field kind the whole update is rejected and the store keeps
// its previous snapshot.
func (s *Store) Merge(update Update) (State, error) {
	if len(update) == 0 {
		return s.current, nil
	}

	keys := make([]string, 0, len(update))
	for key := range update {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	next := cloneValues(s.current.values)
	for _, key := range keys {
		def, ok := Lookup(key)
		if !ok {
			log.Debug().Str("key", key).Msg("formstate: dropping non-field key")
			continue
		}
		raw := update[key]
		if raw == nil {
			delete(next, key)
			continue
		}
		value, err := coerce(def, raw)
		if err != nil {
			return s.current, err
		}
		next[key] = value
	}

	s.current = State{values: next}
	return s.current, nil
}
