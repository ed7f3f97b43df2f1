package areas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brettbedarf/areafs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

var lastModified = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

// newFileServer serves a single file at /docs/report.txt and 404s elsewhere
func newFileServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/base/docs/report.txt" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Token") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))
		w.Header().Set("Content-Length", "5")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte("hello"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHTTPArea(t *testing.T, headers map[string]string) *HTTPArea {
	t.Helper()
	srv := newFileServer(t)
	area, err := NewHTTPArea(srv.Client(), &HTTPSource{BaseURL: srv.URL + "/base", Headers: headers})
	require.NoError(t, err)
	return area
}

func TestNewHTTPArea_URLValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		wantErr bool
		desc    string
	}{
		// Valid cases
		{"http://test.com", false, "basic HTTP URL"},
		{"https://test.com", false, "basic HTTPS URL"},
		{"  http://test.com   ", false, "URL with whitespace"},
		{"http://test.com/path?arg=1&arg2=2", false, "URL with path and query"},
		{"http://test.com:8080", false, "URL with port"},
		{"http://localhost:8080/test", false, "localhost with port"},
		{"http://123.123.123.123/test", false, "IP address"},
		{"http://mylocalnet/test", false, "single label hostname"},

		// Invalid cases
		{"", true, "empty string"},
		{" ", true, "whitespace only"},
		{"_", true, "invalid character"},
		{"ftp://test.com", true, "different scheme rejected"},
		{"test.com", true, "missing scheme"},
		{"http://user@test.com/path", true, "URL with user info"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			area, err := NewHTTPArea(&MockHTTPClient{}, &HTTPSource{BaseURL: tt.url})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, area)
			} else {
				require.NoError(t, err)
				require.NotNil(t, area)
			}
		})
	}
}

func TestHTTPArea_Read(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	area := newTestHTTPArea(t, map[string]string{"X-Token": "secret"})
	f, err := areafs.Forge("/docs/report.txt", area, nil)
	require.NoError(t, err)

	data, err := f.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	size, err := f.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	mtime, err := f.Time(ctx, areafs.TimeModified)
	require.NoError(t, err)
	assert.True(t, lastModified.Equal(mtime))

	perms, err := f.Permissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0444", perms)
}

func TestHTTPArea_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		area := newTestHTTPArea(t, map[string]string{"X-Token": "secret"})
		_, err := area.ReadFile(ctx, "/missing.txt")
		assert.ErrorIs(t, err, areafs.ErrNotFound)
	})

	t.Run("missing headers", func(t *testing.T) {
		t.Parallel()
		area := newTestHTTPArea(t, nil)
		_, err := area.ReadFile(ctx, "/docs/report.txt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("network error", func(t *testing.T) {
		t.Parallel()
		client := &MockHTTPClient{}
		netErr := errors.New("connection refused")
		client.On("Do", mock.Anything).Return(nil, netErr)
		area, err := NewHTTPArea(client, &HTTPSource{BaseURL: "http://test.com"})
		require.NoError(t, err)

		_, err = area.Open(ctx, "/a")
		assert.ErrorIs(t, err, netErr)
		client.AssertExpectations(t)
	})
}

func TestHTTPArea_ReadOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	area, err := NewHTTPArea(&MockHTTPClient{}, &HTTPSource{BaseURL: "https://files.test"})
	require.NoError(t, err)
	f, err := areafs.Forge("/docs/report.txt", area, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Rename(ctx, "x"), areafs.ErrReadOnlyArea)
	assert.ErrorIs(t, f.Move(ctx, "/x"), areafs.ErrReadOnlyArea)
	assert.ErrorIs(t, f.Copy(ctx, "/x"), areafs.ErrReadOnlyArea)
	assert.ErrorIs(t, f.Update(ctx, []byte("x")), areafs.ErrReadOnlyArea)
	assert.ErrorIs(t, f.Delete(ctx), areafs.ErrReadOnlyArea)
	assert.Equal(t, "/docs/report.txt", f.Path())

	url, err := f.URL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/docs/report.txt", url)
}

func TestRegisterHTTP(t *testing.T) {
	RegisterHTTP()

	area, err := NewArea([]byte(`{"type":"http","base_url":"https://files.test","headers":{"A":"b"}}`))
	require.NoError(t, err)
	assert.IsType(t, &HTTPArea{}, area)

	_, err = NewArea([]byte(`{"type":"http","base_url":"ftp://files.test"}`))
	assert.Error(t, err)
}
