package pgrest

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// RPCPrefix marks a resource as an invocable stored procedure rather
// than a table or view.
const RPCPrefix = "rpc/"

// IsRPC reports whether resource names a procedure resource.
func IsRPC(resource string) bool { return strings.HasPrefix(resource, RPCPrefix) }

// Sort names the column and direction of a listing.
type Sort struct {
	Field string
	Order string // asc or desc, case-insensitive
}

// Pagination is a 1-indexed page request.
type Pagination struct {
	Page    int
	PerPage int
}

// ListParams are the caller-facing parameters of a listing call.
type ListParams struct {
	Pagination Pagination
	Sort       Sort
	Filter     Filter
}

// Params is an ordered set of query parameters with unique keys. Setting
// an existing key overwrites its value in place, so insertion order
// determines the literal query string but a later merge wins on value.
type Params struct {
	keys   []string
	values map[string]string
}

func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Set adds or overwrites a parameter.
func (p *Params) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key, or the empty string.
func (p *Params) Get(key string) string { return p.values[key] }

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Len returns the number of parameters.
func (p *Params) Len() int { return len(p.keys) }

// Merge sets every entry of m, in sorted key order for a deterministic
// query string. Entries overwrite parameters of the same name.
func (p *Params) Merge(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Set(k, m[k])
	}
}

// Encode renders the percent-encoded query string in insertion order.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}

// String renders the query string without percent-encoding, for logs
// and tests.
func (p *Params) String() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p.values[k])
	}
	return b.String()
}

// OrderBy renders a sort as an order parameter value. Sorting on the
// generic id field expands to one clause per key column, resolving a
// generic sort-by-id request into the resource's real key.
func OrderBy(field, order string, pk PrimaryKey) string {
	dir := strings.ToLower(order)
	if dir != "desc" {
		dir = "asc"
	}
	if field == GenericID {
		parts := make([]string, len(pk))
		for i, f := range pk {
			parts[i] = f + "." + dir
		}
		return strings.Join(parts, ",")
	}
	return field + "." + dir
}

// MatchClause builds the parameters that address one or more identified
// rows of resource:
//
//   - multiple ids, compound key:  or=(and(k1.eq.v1,k2.eq.v2),and(...))
//   - multiple ids, scalar key:    k=in.(id1,id2,...)
//   - single id, compound key:     and=(k1.eq.v1,k2.eq.v2)
//   - single id, compound key, procedure resource: k1=v1&k2=v2, named
//     arguments with no operator
//   - single id, scalar key:       k=eq.id
//
// Multiple ids against a procedure resource have no PostgREST encoding
// and return an UnsupportedQueryError.
func MatchClause(pk PrimaryKey, ids []string, resource string) (*Params, error) {
	p := NewParams()
	switch {
	case len(ids) == 0:
		return p, nil
	case len(ids) > 1:
		if IsRPC(resource) {
			return nil, &UnsupportedQueryError{Resource: resource}
		}
		if pk.IsCompound() {
			groups := make([]string, 0, len(ids))
			for _, id := range ids {
				conj, err := eqConjunction(pk, id)
				if err != nil {
					return nil, err
				}
				groups = append(groups, "and("+conj+")")
			}
			p.Set("or", "("+strings.Join(groups, ",")+")")
		} else {
			p.Set(pk[0], "in.("+strings.Join(ids, ",")+")")
		}
	default:
		id := ids[0]
		if pk.IsCompound() {
			vals, err := Decode(id, pk)
			if err != nil {
				return nil, err
			}
			if IsRPC(resource) {
				for i, f := range pk {
					p.Set(f, vals[i])
				}
			} else {
				conj, err := eqConjunction(pk, id)
				if err != nil {
					return nil, err
				}
				p.Set("and", "("+conj+")")
			}
		} else {
			p.Set(pk[0], "eq."+id)
		}
	}
	return p, nil
}

// eqConjunction renders "k1.eq.v1,k2.eq.v2" for a compound identifier.
func eqConjunction(pk PrimaryKey, id string) (string, error) {
	vals, err := Decode(id, pk)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(pk))
	for i, f := range pk {
		parts[i] = f + ".eq." + vals[i]
	}
	return strings.Join(parts, ","), nil
}

// ListQuery assembles the full parameter set of a listing call: sort,
// pagination, then filters.
func ListQuery(pk PrimaryKey, lp ListParams, defaultOp string) *Params {
	return ReferenceListQuery(pk, lp, defaultOp, "", "")
}

// ReferenceListQuery is ListQuery scoped to rows referencing a target
// row: the implicit target match is merged first, so an explicit caller
// filter on the same field silently overrides it (last-merged-wins).
func ReferenceListQuery(pk PrimaryKey, lp ListParams, defaultOp, target, targetID string) *Params {
	p := NewParams()
	if target != "" {
		p.Set(target, "eq."+targetID)
	}
	if lp.Sort.Field != "" {
		p.Set("order", OrderBy(lp.Sort.Field, lp.Sort.Order, pk))
	}
	if lp.Pagination.PerPage > 0 {
		p.Set("offset", strconv.Itoa((lp.Pagination.Page-1)*lp.Pagination.PerPage))
		p.Set("limit", strconv.Itoa(lp.Pagination.PerPage))
	}
	p.Merge(lp.Filter.Translate(defaultOp))
	return p
}
