package pgrest

import "fmt"

// MissingHeaderError reports a listing response that lacks the header
// carrying the pagination total. It is never retried by this layer.
type MissingHeaderError struct {
	Header string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("pgrest: response is missing the %s header; if the API sits behind CORS, "+
		"make sure the header is listed in Access-Control-Expose-Headers", e.Header)
}

// MalformedIdentifierError reports a compound identifier that does not
// parse as a JSON array of key values.
type MalformedIdentifierError struct {
	ID  string
	Err error
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("pgrest: malformed compound identifier %q: %v", e.ID, e.Err)
}

func (e *MalformedIdentifierError) Unwrap() error { return e.Err }

// UnsupportedQueryError reports a match request that has no PostgREST
// encoding, currently only a multi-id match against a procedure resource.
type UnsupportedQueryError struct {
	Resource string
}

func (e *UnsupportedQueryError) Error() string {
	return fmt.Sprintf("pgrest: cannot match multiple ids against procedure resource %q", e.Resource)
}
