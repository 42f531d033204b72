package slots

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

func TestDisplayWindowEndpoint(t *testing.T) {
	handle, err := platformdb.Open(context.Background(), filepath.Join(t.TempDir(), "book.gnucash"))
	require.NoError(t, err)
	t.Cleanup(func() { handle.Close() })

	router := chi.NewRouter()
	NewHandler(slog.New(slog.DiscardHandler), NewSettings(NewRepository(handle))).MountRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/settings/display-older-than-one-year")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPut,
		server.URL+"/settings/display-older-than-one-year", strings.NewReader(`{"enabled":true}`))
	require.NoError(t, err)
	putResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer putResp.Body.Close()
	assert.Equal(t, http.StatusOK, putResp.StatusCode)

	enabled, err := NewSettings(NewRepository(handle)).DisplayOlderThanOneYear(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}
