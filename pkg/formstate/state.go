package formstate

import "sort"

// State is an immutable snapshot of the form. The zero value is the empty
// form. Values are stored already coerced: string fields hold string and
// integer fields hold int.
type State struct {
	values map[string]any
}

// Update is a partial field mapping. A nil value clears the key.
type Update map[string]any

// Has reports whether key is set.
func (s State) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Get returns the raw value stored under key.
func (s State) Get(key string) (any, bool) {
	value, ok := s.values[key]
	return value, ok
}

// String returns a string field.
func (s State) String(key string) (string, bool) {
	value, ok := s.values[key].(string)
	return value, ok
}

// Int returns an integer field.
func (s State) Int(key string) (int, bool) {
	value, ok := s.values[key].(int)
	return value, ok
}

// Keys returns the set keys in sorted order.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of set fields.
func (s State) Len() int {
	return len(s.values)
}

// Values returns a copy of the set fields.
func (s State) Values() map[string]any {
	return cloneValues(s.values)
}

// CampName returns the selected camp.
func (s State) CampName() (string, bool) { return s.String(FieldCampName) }

// SessionNumber returns the session (期) number.
func (s State) SessionNumber() (int, bool) { return s.Int(FieldSessionNumber) }

// TraineeName returns the trainee's display name.
func (s State) TraineeName() (string, bool) { return s.String(FieldTraineeName) }

// TraineeAvatar returns the avatar data URI.
func (s State) TraineeAvatar() (string, bool) { return s.String(FieldTraineeAvatar) }

// CheckInDays returns the number of check-in days.
func (s State) CheckInDays() (int, bool) { return s.Int(FieldCheckInDays) }

// TotalTargetCount returns the number of targets set.
func (s State) TotalTargetCount() (int, bool) { return s.Int(FieldTotalTargetCount) }

// TotalPoints returns the points earned.
func (s State) TotalPoints() (int, bool) { return s.Int(FieldTotalPoints) }

// FromValues builds a State from raw values, applying the same filtering and
// coercion as Store.Merge.
func FromValues(values map[string]any) (State, error) {
	var store Store
	return store.Merge(Update(values))
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
