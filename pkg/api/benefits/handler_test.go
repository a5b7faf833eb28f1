package benefits

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/benefit"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/calc"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Meta map[string]any  `json:"meta"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>offer</title></head></html>`))
	}))
	t.Cleanup(srv.Close)

	f := benefit.NewFetcher(0, "", nil)
	f.SamsungURL = srv.URL + "/samsung"
	f.AppleURL = srv.URL + "/apple"
	f.TWorldURL = srv.URL + "/tworld"

	gin.SetMode(gin.TestMode)
	r := gin.New()
	(&Handler{Fetcher: f}).Register(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestBenefits(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTotal  float64
	}{
		{"all", "", http.StatusOK, 3},
		{"apple", "?manufacturer=Apple", http.StatusOK, 2},
		{"samsung", "?manufacturer=samsung", http.StatusOK, 1},
		{"unknown", "?manufacturer=nokia", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodGet, "/api/benefits"+tt.query, "")
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantTotal, env.Meta["total"])
			}
		})
	}
}

func TestBenefits_Provenance(t *testing.T) {
	r := newRouter(t)

	_, env := do(t, r, http.MethodGet, "/api/benefits?manufacturer=samsung", "")
	var records []models.BenefitRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "offer", records[0].SourceTitle)
	assert.Equal(t, benefit.StatusOK, records[0].FetchStatus)
	assert.Equal(t, benefit.DataSourceHardcoded, records[0].DataSource)
}

func TestTWorldPlans(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/plans/tworld", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), env.Meta["total"])
}

func TestCalc(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/calc/extension", `{"monthly_price": 29000, "free_months": 6, "term_months": 24}`)
	require.Equal(t, http.StatusOK, w.Code)
	var ext calc.ExtensionCost
	require.NoError(t, json.Unmarshal(env.Data, &ext))
	assert.Equal(t, calc.ExtensionCost{ExtensionMonths: 18, TotalCost: 522000}, ext)

	w, env = do(t, r, http.MethodPost, "/api/calc/compare", `{"extension_total": 522000, "existing_total": 400000}`)
	require.Equal(t, http.StatusOK, w.Code)
	var cmp calc.CostComparison
	require.NoError(t, json.Unmarshal(env.Data, &cmp))
	assert.Equal(t, calc.CostComparison{Difference: 122000, Result: calc.ExistingCheaper}, cmp)

	w, env = do(t, r, http.MethodPost, "/api/calc/savings", `{"existing_total": 522000, "proposed_total": 400000}`)
	require.Equal(t, http.StatusOK, w.Code)
	var sav calc.Savings
	require.NoError(t, json.Unmarshal(env.Data, &sav))
	assert.True(t, sav.IsSaving)
}

func TestCalc_BadInput(t *testing.T) {
	r := newRouter(t)

	for _, body := range []string{
		`{"monthly_price": 29000, "free_months": 6, "term_months": 0}`,
		`{"monthly_price": -1, "free_months": 6, "term_months": 12}`,
		`{"monthly_price": "free"}`,
	} {
		w, _ := do(t, r, http.MethodPost, "/api/calc/extension", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
