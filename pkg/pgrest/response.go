package pgrest

import (
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"strings"
)

// WithGenericID returns a copy of record that exposes the generic id
// field, computed by encoding the record's key columns. The input record
// is never mutated. When the primary key already is the generic id
// column the record is returned as is.
//
// The operation is idempotent: the generic id is derived from the key
// columns only, so reapplying it yields the same value.
func WithGenericID(record Record, pk PrimaryKey) (Record, error) {
	if pk.isGeneric() {
		return record, nil
	}
	id, err := Encode(record, pk)
	if err != nil {
		return nil, err
	}
	out := maps.Clone(record)
	out[GenericID] = id
	return out, nil
}

// ExtractTotal reads the pagination total from a listing response, the
// integer after the final '/' of the Content-Range header
// ("<from>-<to>/<total>"). A missing header is a hard failure; listing
// calls must request the count via ListHeaders.
func ExtractTotal(h http.Header) (int, error) {
	cr := h.Get(HeaderContentRange)
	if cr == "" {
		return 0, &MissingHeaderError{Header: HeaderContentRange}
	}
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("pgrest: malformed %s header %q", HeaderContentRange, cr)
	}
	total, err := strconv.Atoi(cr[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("pgrest: malformed %s header %q: %w", HeaderContentRange, cr, err)
	}
	return total, nil
}
