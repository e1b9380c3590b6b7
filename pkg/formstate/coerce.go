package formstate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldError reports a value that does not match its field kind.
type FieldError struct {
	Field string
	Kind  Kind
	Value any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("formstate: field %q expects %s, got %T", e.Field, e.Kind, e.Value)
}

func coerce(def Definition, value any) (any, error) {
	switch def.Kind {
	case KindInteger:
		if n, ok := toInt(value); ok {
			return n, nil
		}
	default:
		if s, ok := value.(string); ok {
			return s, nil
		}
	}
	return nil, &FieldError{Field: def.Key, Kind: def.Kind, Value: value}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case float32:
		return wholeFloat(float64(v))
	case float64:
		return wholeFloat(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return wholeFloat(f)
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func wholeFloat(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
