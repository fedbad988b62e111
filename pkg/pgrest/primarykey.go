package pgrest

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// GenericID is the identifier field every shaped record exposes,
// regardless of the resource's actual key columns.
const GenericID = "id"

// Record is a generic row, as decoded from a JSON response body or
// supplied by a caller as a write payload.
type Record map[string]any

// PrimaryKey is the ordered, non-empty list of columns identifying a row.
// A single column is a scalar key, more than one a compound key.
type PrimaryKey []string

// IsCompound reports whether the key spans more than one column.
func (pk PrimaryKey) IsCompound() bool { return len(pk) > 1 }

// isGeneric reports whether the key is just the generic id column, in
// which case identifiers need no encoding at all.
func (pk PrimaryKey) isGeneric() bool { return len(pk) == 1 && pk[0] == GenericID }

// Registry maps resource names to their primary keys. It is established
// once at configuration time and must not be mutated afterwards.
type Registry map[string]PrimaryKey

// PrimaryKeyOf returns the registered key for resource, defaulting to
// the single generic id column for unregistered resources.
func (r Registry) PrimaryKeyOf(resource string) PrimaryKey {
	if pk, ok := r[resource]; ok && len(pk) > 0 {
		return pk
	}
	return PrimaryKey{GenericID}
}

// Encode derives the external identifier of record. A scalar key yields
// the key field's value in string form; a compound key yields a JSON
// array of the key field values in PrimaryKey order.
func Encode(record Record, pk PrimaryKey) (string, error) {
	if !pk.IsCompound() {
		return formatScalar(record[pk[0]]), nil
	}
	vals := make([]any, len(pk))
	for i, f := range pk {
		vals[i] = record[f]
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "", fmt.Errorf("pgrest: encode identifier for key %v: %w", pk, err)
	}
	return string(b), nil
}

// Decode parses an external identifier back into its key values, aligned
// with PrimaryKey order. Compound identifiers must be JSON arrays with
// one element per key column.
func Decode(id string, pk PrimaryKey) ([]string, error) {
	if !pk.IsCompound() {
		return []string{id}, nil
	}
	var vals []any
	if err := json.Unmarshal([]byte(id), &vals); err != nil {
		return nil, &MalformedIdentifierError{ID: id, Err: err}
	}
	if len(vals) != len(pk) {
		return nil, &MalformedIdentifierError{
			ID:  id,
			Err: fmt.Errorf("expected %d key values, got %d", len(pk), len(vals)),
		}
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = formatScalar(v)
	}
	return out, nil
}

// KeyProjection returns only the key columns of record. PostgREST
// requires key columns present in a partial update body to agree with
// the URL's matching clause, so update payloads are rebuilt from this.
func KeyProjection(pk PrimaryKey, record Record) Record {
	out := make(Record, len(pk))
	for _, f := range pk {
		if v, ok := record[f]; ok {
			out[f] = v
		}
	}
	return out
}

// formatScalar renders a scalar value the way it appears in a query
// string. JSON-decoded numbers arrive as float64; integral floats are
// rendered without a fractional part.
func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
