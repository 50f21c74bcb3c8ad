package infrastructure

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()

	m.CatalogLoads.WithLabelValues("reload").Inc()
	m.CatalogRows.Set(42)
	m.FavoritesReads.WithLabelValues("local", "success").Inc()
	m.FavoritesSaves.WithLabelValues("github", "conflict").Inc()
	m.SaveConflicts.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `catalog_loads_total{result="reload"} 1`)
	assert.Contains(t, body, "catalog_rows 42")
	assert.Contains(t, body, `favorites_reads_total{backend="local",result="success"} 1`)
	assert.Contains(t, body, "favorites_save_conflicts_total 1")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	first := NewMetrics()
	second := NewMetrics()
	assert.NotSame(t, first, second)
}
