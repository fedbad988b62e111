package pgrest

import (
	"encoding/json"
	"strconv"
	"strings"
)

// OperatorSeparator splits a filter key into field name and explicit
// operator, e.g. "age@gte". At most one separator is recognized; field
// names therefore must not contain '@'.
const OperatorSeparator = "@"

// Kind tags a filter value with the shape that drives operator inference.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNumber
	KindNull
	KindList
	KindMap
	KindOther
)

// Value is a filter value whose kind is fixed at construction time, so
// translation is a lookup over tags rather than repeated type inspection.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  string
	list []string
	obj  map[string]any
	raw  any
}

// Kind returns the tag assigned when the value was constructed.
func (v Value) Kind() Kind { return v.kind }

// String tags a text value; it translates to a substring match unless an
// explicit operator is attached to the filter key.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool tags a boolean value; it translates to an "is" test.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Null tags an absent value; it always translates to "is.null".
func Null() Value { return Value{kind: KindNull} }

// Int tags an integer value; it translates to an exact match.
func Int(i int) Value { return Value{kind: KindNumber, num: strconv.Itoa(i)} }

// Float tags a floating-point value; it translates to an exact match.
func Float(f float64) Value {
	return Value{kind: KindNumber, num: strconv.FormatFloat(f, 'f', -1, 64)}
}

// List tags a sequence of scalars; it translates to a containment test.
func List(elems ...any) Value {
	vals := make([]string, len(elems))
	for i, e := range elems {
		vals[i] = formatScalar(e)
	}
	return Value{kind: KindList, list: vals}
}

// Object tags a plain nested mapping. Without an explicit operator it is
// expanded into one JSON-path filter per nested field; with one it is
// passed through untouched, for positional procedure-call arguments.
func Object(fields map[string]any) Value { return Value{kind: KindMap, obj: fields} }

// ValueOf tags an arbitrary value by its runtime shape. Use the typed
// constructors when the shape is known at the call site.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(t)
	case int32:
		return Int(int(t))
	case int64:
		return Value{kind: KindNumber, num: strconv.FormatInt(t, 10)}
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		return Value{kind: KindNumber, num: t.String()}
	case []any:
		return List(t...)
	case []string:
		elems := make([]any, len(t))
		for i, s := range t {
			elems[i] = s
		}
		return List(elems...)
	case []int:
		elems := make([]any, len(t))
		for i, n := range t {
			elems[i] = n
		}
		return List(elems...)
	case []float64:
		elems := make([]any, len(t))
		for i, n := range t {
			elems[i] = n
		}
		return List(elems...)
	case map[string]any:
		return Object(t)
	default:
		return Value{kind: KindOther, raw: v}
	}
}

// Filter maps filter keys, optionally carrying an '@'-separated operator
// suffix, to tagged values.
type Filter map[string]Value

// NewFilter tags every value of a loosely typed filter mapping.
func NewFilter(m map[string]any) Filter {
	f := make(Filter, len(m))
	for k, v := range m {
		f[k] = ValueOf(v)
	}
	return f
}

// Translate renders the filter into operator-prefixed query values.
//
// When a key carries no explicit operator the operator is inferred from
// the value's kind: substring match for text, "is" for booleans and
// nulls, exact match for numbers, containment for lists. An explicit
// operator suffix overrides inference, and the output key keeps the full
// original key including the suffix, matching the grammar the server
// side of this convention parses.
//
// defaultOp names the caller's preferred list operator; kind-based
// inference takes precedence for every kind in the table above, so it
// only documents intent at the call site.
func (f Filter) Translate(defaultOp string) map[string]string {
	out := make(map[string]string, len(f))
	for key, v := range f {
		field, op, hasOp := strings.Cut(key, OperatorSeparator)

		switch v.kind {
		case KindNull:
			// null tests ignore any explicit operator
			out[key] = "is.null"
		case KindBool:
			if hasOp {
				out[key] = op + "." + strconv.FormatBool(v.b)
			} else {
				out[key] = "is." + strconv.FormatBool(v.b)
			}
		case KindNumber:
			if hasOp {
				out[key] = op + "." + v.num
			} else {
				out[key] = "eq." + v.num
			}
		case KindString:
			if hasOp {
				out[key] = op + ".*" + v.str + "*"
			} else {
				out[key] = "ilike.*" + stripColons(v.str) + "*"
			}
		case KindList:
			if hasOp {
				out[key] = op + ".{" + strings.Join(v.list, ",") + "}"
			} else {
				stripped := make([]string, len(v.list))
				for i, e := range v.list {
					stripped[i] = stripColons(e)
				}
				out[key] = "cs.{" + strings.Join(stripped, ",") + "}"
			}
		case KindMap:
			if hasOp {
				// positional argument for a procedure resource, not a column filter
				out[key] = encodeJSON(v.obj)
			} else {
				for nested, nv := range v.obj {
					out[field+"->"+nested] = "ilike.*" + formatScalar(nv) + "*"
				}
			}
		default:
			out[key] = "ilike.*" + stripColons(formatScalar(v.raw)) + "*"
		}
	}
	return out
}

// stripColons removes colon characters so inferred values cannot smuggle
// in an operator of their own.
func stripColons(s string) string { return strings.ReplaceAll(s, ":", "") }

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
