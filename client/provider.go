package client

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Record is an opaque resource record. The adapter makes no assumptions
// about its fields beyond what the API contract requires.
type Record map[string]interface{}

// ListQuery carries pagination, sorting, and filtering for list calls.
// Empty filter values are dropped before encoding.
type ListQuery struct {
	Page      int
	PageSize  int
	SortField string
	SortOrder string
	Filters   map[string]string
}

// ListResult is the normalized list response. A missing items field becomes
// an empty slice, a missing total becomes 0.
type ListResult struct {
	Items []Record
	Total int
}

// DataProvider translates generic CRUD operations into REST calls for any
// named resource.
type DataProvider struct {
	client *Client
}

// NewDataProvider returns a data provider over the client
func NewDataProvider(c *Client) *DataProvider {
	return &DataProvider{client: c}
}

// normalizeSortOrder applies one uniform fallback everywhere: an absent
// order sorts ascending, an unrecognized one sorts descending.
func normalizeSortOrder(order string) string {
	switch strings.ToLower(order) {
	case "":
		return "asc"
	case "asc", "desc":
		return strings.ToLower(order)
	default:
		return "desc"
	}
}

// encodeQuery builds the query string. Values are percent-encoded; keys are
// emitted as-is per the API contract. Filter keys are sorted so the output
// is deterministic.
func encodeQuery(q ListQuery) string {
	var params []string
	add := func(key, value string) {
		params = append(params, key+"="+url.QueryEscape(value))
	}

	if q.Page > 0 {
		add("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		add("page_size", strconv.Itoa(q.PageSize))
	}
	if q.SortField != "" {
		add("sort_field", strings.ToLower(q.SortField))
		add("sort_order", normalizeSortOrder(q.SortOrder))
	}

	keys := make([]string, 0, len(q.Filters))
	for key, value := range q.Filters {
		if value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		add(key, q.Filters[key])
	}

	if len(params) == 0 {
		return ""
	}
	return "?" + strings.Join(params, "&")
}

// List fetches one page of a resource.
func (p *DataProvider) List(ctx context.Context, resource string, q ListQuery) (*ListResult, error) {
	resp, err := p.client.Request(ctx, "GET", "/"+resource+encodeQuery(q), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}

	result := &ListResult{Items: []Record{}}
	if items, ok := resp.Body["items"].([]interface{}); ok {
		for _, item := range items {
			if record, ok := item.(map[string]interface{}); ok {
				result.Items = append(result.Items, Record(record))
			}
		}
	}
	if total, ok := resp.Body["total"].(float64); ok {
		result.Total = int(total)
	}

	return result, nil
}

// GetOne fetches a single record by id.
func (p *DataProvider) GetOne(ctx context.Context, resource, id string) (Record, error) {
	resp, err := p.client.Request(ctx, "GET", "/"+resource+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", resource, id, err)
	}
	return Record(resp.Body), nil
}

// GetMany fetches the given ids concurrently. All-or-nothing: if any fetch
// fails the whole call fails. Results preserve the input id order.
func (p *DataProvider) GetMany(ctx context.Context, resource string, ids []string) ([]Record, error) {
	records := make([]Record, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			records[i], errs[i] = p.GetOne(ctx, resource, id)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// GetManyReference lists records related to another record: the target
// field is applied as a filter after the caller's own filters, so the
// reference value wins on key collision.
func (p *DataProvider) GetManyReference(ctx context.Context, resource, target, id string, q ListQuery) (*ListResult, error) {
	filters := map[string]string{}
	for key, value := range q.Filters {
		filters[key] = value
	}
	filters[target] = id
	q.Filters = filters

	return p.List(ctx, resource, q)
}

// Create POSTs a new record and returns the created record.
func (p *DataProvider) Create(ctx context.Context, resource string, data Record) (Record, error) {
	resp, err := p.client.Request(ctx, "POST", "/"+resource, data, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", resource, err)
	}
	return Record(resp.Body), nil
}

// Update PUTs changed fields and returns the updated record.
func (p *DataProvider) Update(ctx context.Context, resource, id string, data Record) (Record, error) {
	resp, err := p.client.Request(ctx, "PUT", "/"+resource+"/"+url.PathEscape(id), data, nil)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", resource, id, err)
	}
	return Record(resp.Body), nil
}

// UpdateMany applies the same change to every id concurrently,
// all-or-nothing, results in input order.
func (p *DataProvider) UpdateMany(ctx context.Context, resource string, ids []string, data Record) ([]Record, error) {
	records := make([]Record, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			records[i], errs[i] = p.Update(ctx, resource, id, data)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Delete removes a record and returns {id} for the caller's bookkeeping.
func (p *DataProvider) Delete(ctx context.Context, resource, id string) (Record, error) {
	if _, err := p.client.Request(ctx, "DELETE", "/"+resource+"/"+url.PathEscape(id), nil, nil); err != nil {
		return nil, fmt.Errorf("delete %s %s: %w", resource, id, err)
	}
	return Record{"id": id}, nil
}

// DeleteMany deletes every id concurrently, all-or-nothing, returning the
// deleted ids in input order.
func (p *DataProvider) DeleteMany(ctx context.Context, resource string, ids []string) ([]string, error) {
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = p.Delete(ctx, resource, id)
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}
