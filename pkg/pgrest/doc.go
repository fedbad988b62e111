// Package pgrest translates generic resource-CRUD parameters (filters,
// sort, pagination, single or compound identifiers) into the URL
// query-parameter grammar understood by PostgREST.
//
// It is the inverse of a PostgREST server's query parser: callers hand it
// loosely typed CRUD parameters and it produces the query string and the
// request headers a PostgREST endpoint expects.
//
// Emitted query parameters:
//
//	Parameter            | Description
//	---------------------|------------------------------------------------
//	?order=col.desc      | Order results; sorting on the generic id field
//	                     | expands to the resource's real key columns
//	?limit=25&offset=50  | Pagination, derived from a 1-indexed page
//	?col=eq.val          | Single-id match on a scalar key
//	?col=in.(a,b,c)      | Multi-id match on a scalar key
//	?and=(a.eq.x,b.eq.y) | Single-id match on a compound key
//	?or=(and(..),and(..))| Multi-id match on a compound key
//	?col=ilike.*val*     | Inferred substring filter on text values
//	?col=is.true         | Inferred filter on booleans and nulls
//	?col=cs.{a,b}        | Inferred containment filter on lists
//
// Filter keys may carry an explicit operator after a single '@' separator
// (e.g. "age@gte"), overriding type-based inference. Resources prefixed
// with "rpc/" denote stored procedures and are addressed with named
// arguments instead of filter operators.
//
// Request headers dictated by this layer:
//
//	Header                               | Used for
//	-------------------------------------|--------------------------------
//	Prefer: count=exact                  | Listing calls; makes the server
//	                                     | report the total in Content-Range
//	Prefer: return=representation        | Writes; echo the affected rows
//	Accept: application/vnd.pgrst.object+json | Single-record responses
//
// All functions are pure and safe for unbounded concurrent use; the only
// shared input is the read-only primary-key Registry.
//
// Grammar reference: https://docs.postgrest.org/en/stable/references/api/tables_views.html
package pgrest
