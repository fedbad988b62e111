package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edgeflare/pgrc/internal/testutil"
	"github.com/edgeflare/pgrc/pkg/client"
	"github.com/edgeflare/pgrc/pkg/pgrest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...client.Option) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, append([]client.Option{client.WithMaxRetries(0)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestGetList(t *testing.T) {
	var gotQuery map[string][]string
	var gotPrefer string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotPrefer = r.Header.Get("Prefer")
		w.Header().Set("Content-Range", "0-1/42")
		_ = json.NewEncoder(w).Encode([]pgrest.Record{
			{"id": 1, "title": "go"},
			{"id": 2, "title": "gopher"},
		})
	})

	res, err := c.GetList(context.Background(), "posts", pgrest.ListParams{
		Pagination: pgrest.Pagination{Page: 2, PerPage: 10},
		Sort:       pgrest.Sort{Field: "title", Order: "ASC"},
		Filter:     pgrest.Filter{"title": pgrest.String("go")},
	})
	require.NoError(t, err)

	assert.Equal(t, 42, res.Total)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, "count=exact", gotPrefer)
	assert.Equal(t, []string{"title.asc"}, gotQuery["order"])
	assert.Equal(t, []string{"10"}, gotQuery["offset"])
	assert.Equal(t, []string{"10"}, gotQuery["limit"])
	assert.Equal(t, []string{"ilike.*go*"}, gotQuery["title"])
}

func TestGetListMissingContentRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]pgrest.Record{})
	})

	_, err := c.GetList(context.Background(), "posts", pgrest.ListParams{})

	var missing *pgrest.MissingHeaderError
	require.True(t, errors.As(err, &missing))
}

func TestGetListCompoundKeyAttachesGenericID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		records, err := testutil.LoadJSONArray("licenses.json")
		assert.NoError(t, err)
		w.Header().Set("Content-Range", "0-1/2")
		_ = json.NewEncoder(w).Encode(records)
	}, client.WithPrimaryKeys(pgrest.Registry{
		"licenses": {"license_nr", "valid_from"},
	}))

	res, err := c.GetList(context.Background(), "licenses", pgrest.ListParams{})
	require.NoError(t, err)

	require.Len(t, res.Data, 2)
	assert.Equal(t, `["L-100","2024-01-01"]`, res.Data[0]["id"])
	assert.Equal(t, `["L-200","2024-06-01"]`, res.Data[1]["id"])
}

func TestGetOne(t *testing.T) {
	var gotQuery map[string][]string
	var gotAccept string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAccept = r.Header.Get("Accept")
		_ = json.NewEncoder(w).Encode(pgrest.Record{"id": 9, "title": "go"})
	})

	rec, err := c.GetOne(context.Background(), "posts", "9")
	require.NoError(t, err)

	assert.Equal(t, []string{"eq.9"}, gotQuery["id"])
	assert.Equal(t, "application/vnd.pgrst.object+json", gotAccept)
	assert.Equal(t, "go", rec["title"])
}

func TestGetOneCompoundKey(t *testing.T) {
	var gotQuery map[string][]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(pgrest.Record{"a": "x", "b": "y"})
	}, client.WithPrimaryKeys(pgrest.Registry{"posts": {"a", "b"}}))

	rec, err := c.GetOne(context.Background(), "posts", `["x","y"]`)
	require.NoError(t, err)

	assert.Equal(t, []string{"(a.eq.x,b.eq.y)"}, gotQuery["and"])
	assert.Equal(t, `["x","y"]`, rec["id"])
}

func TestGetOneProcedureResource(t *testing.T) {
	var gotQuery map[string][]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(pgrest.Record{"result": true})
	}, client.WithPrimaryKeys(pgrest.Registry{"rpc/lookup": {"region", "nr"}}))

	_, err := c.GetOne(context.Background(), "rpc/lookup", `["eu",12]`)
	require.NoError(t, err)

	// named arguments, no operator
	assert.Equal(t, []string{"eu"}, gotQuery["region"])
	assert.Equal(t, []string{"12"}, gotQuery["nr"])
}

func TestGetManyUnsupportedForProcedure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, client.WithPrimaryKeys(pgrest.Registry{"rpc/lookup": {"a", "b"}}))

	_, err := c.GetMany(context.Background(), "rpc/lookup", []string{`["x","y"]`, `["p","q"]`})

	var unsupported *pgrest.UnsupportedQueryError
	require.True(t, errors.As(err, &unsupported))
}

func TestGetManyReferenceFilterOverridesTarget(t *testing.T) {
	var gotQuery map[string][]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Range", "0-0/1")
		_ = json.NewEncoder(w).Encode([]pgrest.Record{{"id": 1}})
	})

	_, err := c.GetManyReference(context.Background(), "comments", "post_id", "7", pgrest.ListParams{
		Filter: pgrest.Filter{"post_id": pgrest.Int(9)},
	})
	require.NoError(t, err)

	// the caller's filter silently wins over the implicit reference match
	assert.Equal(t, []string{"eq.9"}, gotQuery["post_id"])
}

func TestCreate(t *testing.T) {
	var gotMethod, gotPrefer string
	var gotBody pgrest.Record

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPrefer = r.Header.Get("Prefer")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(pgrest.Record{"id": 11, "title": "new"})
	})

	rec, err := c.Create(context.Background(), "posts", pgrest.Record{"title": "new"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "return=representation", gotPrefer)
	assert.Equal(t, pgrest.Record{"title": "new"}, gotBody)
	assert.Equal(t, float64(11), rec["id"])
}

func TestUpdateReattachesKeyColumns(t *testing.T) {
	var gotMethod string
	var gotQuery map[string][]string
	var gotBody pgrest.Record

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(pgrest.Record{"a": "x", "b": "y", "title": "patched"})
	}, client.WithPrimaryKeys(pgrest.Registry{"posts": {"a", "b"}}))

	// "a" comes from the payload (native type preserved), "b" from the identifier
	_, err := c.Update(context.Background(), "posts", `["x","y"]`, pgrest.Record{
		"a":     "x",
		"title": "patched",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, []string{"(a.eq.x,b.eq.y)"}, gotQuery["and"])
	assert.Equal(t, pgrest.Record{"a": "x", "b": "y", "title": "patched"}, gotBody)
}

func TestDeleteMany(t *testing.T) {
	var gotMethod string
	var gotQuery map[string][]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusNoContent)
	})

	ids, err := c.DeleteMany(context.Background(), "posts", []string{"1", "2"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, []string{"in.(1,2)"}, gotQuery["id"])
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	})

	_, err := c.GetOne(context.Background(), "posts", "1")

	var se *client.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Contains(t, se.Body, "permission denied")
}

func TestRetryOnServerError(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(pgrest.Record{"id": 1})
	}, client.WithMaxRetries(1))

	_, err := c.GetOne(context.Background(), "posts", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestDecodeRecord(t *testing.T) {
	type post struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}

	var p post
	err := client.DecodeRecord(pgrest.Record{"id": float64(7), "title": "go"}, &p)
	require.NoError(t, err)
	assert.Equal(t, post{ID: 7, Title: "go"}, p)
}
