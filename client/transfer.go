package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"sort"
	"strings"
)

// UploadResult is the outcome of a CSV import.
type UploadResult struct {
	TotalRows    int              `json:"total_rows"`
	UsersCreated int              `json:"users_created"`
	Errors       []UploadRowError `json:"errors"`
}

// UploadRowError reports the failures of one CSV row, numbered from 2.
type UploadRowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// ExportFilters narrows a CSV export. Values are trimmed; blank values are
// omitted from the query.
type ExportFilters struct {
	Role        string
	Status      string
	AccountRole string
	Search      string
}

// ExportSort orders a CSV export. The order falls back the same way the
// data adapter's does.
type ExportSort struct {
	Field string
	Order string
}

// UploadCSV imports users from a CSV payload. The filename is checked for a
// .csv extension before anything is sent; the server remains authoritative.
func (c *Client) UploadCSV(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, &Error{Status: 0, Message: "File must be a CSV file"}
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	resp, err := c.Do(ctx, "POST", "/users/upload-csv", &buf, map[string]string{
		"Content-Type": writer.FormDataContentType(),
	})
	if err != nil {
		return nil, fmt.Errorf("upload csv: %w", err)
	}

	result := &UploadResult{Errors: []UploadRowError{}}
	if total, ok := resp.Body["total_rows"].(float64); ok {
		result.TotalRows = int(total)
	}
	if created, ok := resp.Body["users_created"].(float64); ok {
		result.UsersCreated = int(created)
	}
	if rows, ok := resp.Body["errors"].([]interface{}); ok {
		for _, raw := range rows {
			row, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			rowErr := UploadRowError{}
			if n, ok := row["row"].(float64); ok {
				rowErr.Row = int(n)
			}
			if msgs, ok := row["errors"].([]interface{}); ok {
				for _, msg := range msgs {
					if s, ok := msg.(string); ok {
						rowErr.Errors = append(rowErr.Errors, s)
					}
				}
			}
			result.Errors = append(result.Errors, rowErr)
		}
	}

	return result, nil
}

// ExportCSV downloads the filtered user list as CSV bytes. A response whose
// content type is neither text/csv nor application/octet-stream is treated
// as a failure and reported with the start of the body for diagnosis.
func (c *Client) ExportCSV(ctx context.Context, filters ExportFilters, csvSort *ExportSort) ([]byte, error) {
	values := map[string]string{
		"role":         strings.TrimSpace(filters.Role),
		"status":       strings.TrimSpace(filters.Status),
		"account_role": strings.TrimSpace(filters.AccountRole),
		"search":       strings.TrimSpace(filters.Search),
	}
	if csvSort != nil && csvSort.Field != "" {
		values["sort_field"] = strings.ToLower(strings.TrimSpace(csvSort.Field))
		values["sort_order"] = normalizeSortOrder(csvSort.Order)
	}

	keys := make([]string, 0, len(values))
	for key, value := range values {
		if value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var params []string
	for _, key := range keys {
		params = append(params, key+"="+url.QueryEscape(values[key]))
	}
	path := "/users/export-csv"
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	resp, err := c.Do(ctx, "GET", path, nil, map[string]string{"Accept": "text/csv"})
	if err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/csv") && !strings.HasPrefix(contentType, "application/octet-stream") {
		preview := string(resp.Raw)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, &Error{
			Status:  resp.Status,
			Message: fmt.Sprintf("Export returned unexpected content type %q: %s", contentType, preview),
		}
	}

	return resp.Raw, nil
}
