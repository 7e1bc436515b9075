package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/config"
)

func TestDoctor_AllChecksPass(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := jobSource(t, &healthy)

	cfg := config.Default()
	cfg.Source.BaseURL = srv.URL
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "data")

	res := Doctor(context.Background(), cfg, nil)
	require.Len(t, res.Checks, 3)
	assert.True(t, res.OK, "%+v", res.Checks)
	assert.Equal(t, "storage:file", res.Checks[1].Name)
	assert.Contains(t, res.Checks[2].Message, "2 job(s)")
}

func TestDoctor_ReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Source.BaseURL = srv.URL
	cfg.Storage.Backend = "nosuch"

	res := Doctor(context.Background(), cfg, []string{`invalid storage.backend "nosuch", using default`})
	assert.False(t, res.OK)
	for _, c := range res.Checks {
		assert.False(t, c.OK, c.Name)
	}
	assert.Contains(t, res.Checks[2].Message, "built-in postings")
}
