package client

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCSVRejectsNonCSVName(t *testing.T) {
	var called bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})

	_, err := c.UploadCSV(context.Background(), "users.xlsx", strings.NewReader("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV")
	assert.False(t, called, "nothing should be sent for a non-CSV name")
}

func TestUploadCSVSendsMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "team.csv", header.Filename)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		w.Write([]byte(`{"total_rows": 3, "users_created": 2, "errors": [{"row": 4, "errors": ["Invalid email format"]}]}`))
	})

	result, err := c.UploadCSV(context.Background(), "team.csv", strings.NewReader("name,email,password\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.UsersCreated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, []string{"Invalid email format"}, result.Errors[0].Errors)
}

func TestUploadCSVServerFailureUsesDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(400)
		w.Write([]byte(`{"detail": "Missing required columns: password"}`))
	})

	_, err := c.UploadCSV(context.Background(), "team.csv", strings.NewReader("name,email\n"))
	clientErr := asClientError(t, err)
	assert.Equal(t, "Missing required columns: password", clientErr.Message)
}

func TestExportCSVQueryEncoding(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte("id,name\n"))
	})

	_, err := c.ExportCSV(context.Background(), ExportFilters{
		Role:   "  manager  ",
		Status: "   ",
		Search: "ada",
	}, &ExportSort{Field: "Name", Order: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, "role=manager&search=ada&sort_field=name&sort_order=desc", gotQuery)
}

func TestExportCSVAcceptsOctetStream(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("id,name\nu1,Ada\n"))
	})

	blob, err := c.ExportCSV(context.Background(), ExportFilters{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "id,name\nu1,Ada\n", string(blob))
}

func TestExportCSVUnexpectedContentType(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("oops"))
	})

	_, err := c.ExportCSV(context.Background(), ExportFilters{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
	assert.Contains(t, err.Error(), "text/plain")
}

func TestExportCSVDiagnosticTruncatedTo200(t *testing.T) {
	long := strings.Repeat("x", 500)
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(long))
	})

	_, err := c.ExportCSV(context.Background(), ExportFilters{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), strings.Repeat("x", 200))
	assert.NotContains(t, err.Error(), strings.Repeat("x", 201))
}
