package client

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"

	"github.com/edgeflare/pgrc/pkg/pgrest"
)

// ListResult is a page of records together with the total the endpoint
// reported in Content-Range.
type ListResult struct {
	Data  []pgrest.Record
	Total int
}

// GetList fetches a page of resource with filters, sort, and pagination.
func (c *Client) GetList(ctx context.Context, resource string, params pgrest.ListParams) (*ListResult, error) {
	pk := c.registry.PrimaryKeyOf(resource)
	q := pgrest.ListQuery(pk, params, c.defaultListOp)
	return c.list(ctx, "getList", resource, pk, q)
}

// GetManyReference fetches the page of resource rows whose target column
// references id. An explicit filter on the target column overrides the
// implicit reference match.
func (c *Client) GetManyReference(ctx context.Context, resource, target, id string, params pgrest.ListParams) (*ListResult, error) {
	pk := c.registry.PrimaryKeyOf(resource)
	q := pgrest.ReferenceListQuery(pk, params, c.defaultListOp, target, id)
	return c.list(ctx, "getManyReference", resource, pk, q)
}

// GetOne fetches a single record by identifier.
func (c *Client) GetOne(ctx context.Context, resource, id string) (pgrest.Record, error) {
	pk := c.registry.PrimaryKeyOf(resource)
	q, err := pgrest.MatchClause(pk, []string{id}, resource)
	if err != nil {
		return nil, err
	}
	_, body, err := c.do(ctx, "getOne", http.MethodGet, resource, q, nil, pgrest.SingularHeaders())
	if err != nil {
		return nil, err
	}
	return decodeRecord(body, pk)
}

// GetMany fetches the records matching ids, in whatever order the
// endpoint returns them.
func (c *Client) GetMany(ctx context.Context, resource string, ids []string) ([]pgrest.Record, error) {
	pk := c.registry.PrimaryKeyOf(resource)
	q, err := pgrest.MatchClause(pk, ids, resource)
	if err != nil {
		return nil, err
	}
	_, body, err := c.do(ctx, "getMany", http.MethodGet, resource, q, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecords(body, pk)
}

// Create inserts data and returns the created record as echoed by the
// endpoint, with its generic id attached.
func (c *Client) Create(ctx context.Context, resource string, data pgrest.Record) (pgrest.Record, error) {
	pk := c.registry.PrimaryKeyOf(resource)
	_, body, err := c.do(ctx, "create", http.MethodPost, resource, nil, data, pgrest.WriteHeaders(true))
	if err != nil {
		return nil, err
	}
	return decodeRecord(body, pk)
}

// Update patches the record matching id. Key columns are re-attached to
// the body so a partial payload agrees with the URL's matching clause:
// values already present in data win, missing ones are taken from the
// decoded identifier.
func (c *Client) Update(ctx context.Context, resource, id string, data pgrest.Record) (pgrest.Record, error) {
	pk := c.registry.PrimaryKeyOf(resource)
	q, err := pgrest.MatchClause(pk, []string{id}, resource)
	if err != nil {
		return nil, err
	}

	body := maps.Clone(data)
	keys := pgrest.KeyProjection(pk, data)
	vals, err := pgrest.Decode(id, pk)
	if err != nil {
		return nil, err
	}
	for i, f := range pk {
		if v, ok := keys[f]; ok {
			body[f] = v
		} else {
			body[f] = vals[i]
		}
	}

	_, respBody, err := c.do(ctx, "update", http.MethodPatch, resource, q, body, pgrest.WriteHeaders(true))
	if err != nil {
		return nil, err
	}
	return decodeRecord(respBody, pk)
}

// UpdateMany patches each identified record with the same payload and
// returns the ids that were updated. PostgREST cannot attach per-row key
// columns in one bulk PATCH, so updates are issued per id.
func (c *Client) UpdateMany(ctx context.Context, resource string, ids []string, data pgrest.Record) ([]string, error) {
	for _, id := range ids {
		if _, err := c.Update(ctx, resource, id, data); err != nil {
			return nil, fmt.Errorf("update %s id %s: %w", resource, id, err)
		}
	}
	return ids, nil
}

// Delete removes the record matching id and returns it as echoed by the
// endpoint.
func (c *Client) Delete(ctx context.Context, resource, id string) (pgrest.Record, error) {
	pk := c.registry.PrimaryKeyOf(resource)
	q, err := pgrest.MatchClause(pk, []string{id}, resource)
	if err != nil {
		return nil, err
	}
	_, body, err := c.do(ctx, "delete", http.MethodDelete, resource, q, nil, pgrest.WriteHeaders(true))
	if err != nil {
		return nil, err
	}
	return decodeRecord(body, pk)
}

// DeleteMany removes all identified records in a single request and
// returns the ids that were deleted.
func (c *Client) DeleteMany(ctx context.Context, resource string, ids []string) ([]string, error) {
	pk := c.registry.PrimaryKeyOf(resource)
	q, err := pgrest.MatchClause(pk, ids, resource)
	if err != nil {
		return nil, err
	}
	if _, _, err := c.do(ctx, "deleteMany", http.MethodDelete, resource, q, nil, pgrest.WriteHeaders(false)); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) list(ctx context.Context, op, resource string, pk pgrest.PrimaryKey, q *pgrest.Params) (*ListResult, error) {
	h, body, err := c.do(ctx, op, http.MethodGet, resource, q, nil, pgrest.ListHeaders())
	if err != nil {
		return nil, err
	}
	total, err := pgrest.ExtractTotal(h)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(body, pk)
	if err != nil {
		return nil, err
	}
	return &ListResult{Data: records, Total: total}, nil
}

func decodeRecords(body []byte, pk pgrest.PrimaryKey) ([]pgrest.Record, error) {
	var records []pgrest.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("client: decode response body: %w", err)
	}
	for i, r := range records {
		shaped, err := pgrest.WithGenericID(r, pk)
		if err != nil {
			return nil, err
		}
		records[i] = shaped
	}
	return records, nil
}

func decodeRecord(body []byte, pk pgrest.PrimaryKey) (pgrest.Record, error) {
	var record pgrest.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("client: decode response body: %w", err)
	}
	return pgrest.WithGenericID(record, pk)
}
