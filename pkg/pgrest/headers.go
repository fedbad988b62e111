package pgrest

import "net/http"

// Header and preference values this layer dictates on outgoing requests,
// mirroring the Prefer handling (RFC 7240) of the server side.
const (
	HeaderPrefer       = "Prefer"
	HeaderAccept       = "Accept"
	HeaderContentRange = "Content-Range"

	PreferCountExact           = "count=exact"
	PreferReturnRepresentation = "return=representation"

	MIMEApplicationJSON = "application/json"
	// MIMESingularJSON makes PostgREST return a lone JSON object instead
	// of a one-element array.
	MIMESingularJSON = "application/vnd.pgrst.object+json"
)

// ListHeaders returns the headers for listing calls: an exact total
// count is requested so the response carries it in Content-Range.
func ListHeaders() http.Header {
	h := http.Header{}
	h.Set(HeaderPrefer, PreferCountExact)
	return h
}

// WriteHeaders returns the headers for mutation calls. The affected rows
// are echoed back; singular additionally requests a lone-object response.
func WriteHeaders(singular bool) http.Header {
	h := http.Header{}
	h.Set(HeaderPrefer, PreferReturnRepresentation)
	if singular {
		h.Set(HeaderAccept, MIMESingularJSON)
	}
	return h
}

// SingularHeaders returns the headers for single-record reads.
func SingularHeaders() http.Header {
	h := http.Header{}
	h.Set(HeaderAccept, MIMESingularJSON)
	return h
}
