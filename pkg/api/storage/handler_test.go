package storage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/store"
	"github.com/nan702ya/skt-ai-adoption-plan/pkg/models"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

const designBody = `{
	"manufacturer": "Samsung",
	"rate_plan": {"name": "5GX 플래티넘", "monthly_fee": 125000, "included_benefits": ["T우주"]},
	"benefit": {"manufacturer": "Samsung", "name": "Google One AI Premium", "free_months": 6, "monthly_price": 29000},
	"term_months": 24,
	"memo": "갤럭시 출시"
}`

const scenarioBody = `{
	"scenario_id": "scenario_fixed",
	"scenario_type": "base",
	"new_plan": {"name": "5G 라이트", "monthly_fee": 35000, "data_allowance_gb": 8},
	"migration_rates": {"5GX 레귤러": 0.0864},
	"winback_rate": 0.045,
	"results": {"arpu_change_pct": -0.72, "annual_revenue_impact": -4330800000, "new_subscribers": 30420, "downgrade_subscribers": 25920, "winback_subscribers": 4500}
}`

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &Handler{Store: store.NewMemory()}
	r := gin.New()
	h.Register(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestDesignLifecycle(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/designs", designBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var saved struct {
		DesignID string `json:"design_id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &saved))
	assert.True(t, strings.HasPrefix(saved.DesignID, "design_"))

	w = do(t, r, http.MethodGet, "/api/designs/"+saved.DesignID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.PlanDesign
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, models.DefaultDiscountType, got.DiscountType)
	assert.Equal(t, 24, got.TermMonths)

	w = do(t, r, http.MethodGet, "/api/designs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w).Meta["total"])

	w = do(t, r, http.MethodGet, "/api/designs/"+saved.DesignID+"/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "| 연장 총비용 | 522,000원 |")

	w = do(t, r, http.MethodDelete, "/api/designs/"+saved.DesignID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/api/designs/"+saved.DesignID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, r, http.MethodGet, "/api/designs/"+saved.DesignID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveDesign_Invalid(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name        string
		body        string
		wantMissing []any
	}{
		{"empty object", `{}`, []any{"manufacturer", "rate_plan", "benefit", "term_months"}},
		{"unknown key", `{"manufacturer": "Apple", "colour": "red"}`, nil},
		{"wrong type", `{"term_months": "twelve"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/designs", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			if tt.wantMissing != nil {
				assert.ElementsMatch(t, tt.wantMissing, decode(t, w).Meta["missing"])
			}
		})
	}
}

func TestScenarioLifecycle(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/scenarios", scenarioBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/scenarios/scenario_fixed", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.SimulationScenario
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, int64(-4330800000), got.Results.AnnualRevenueImpact)
	assert.Equal(t, models.ChannelBoth, got.NewPlan.Channel)

	w = do(t, r, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []store.ScenarioSummary
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "5G 라이트", list[0].NewPlanName)

	w = do(t, r, http.MethodDelete, "/api/scenarios/scenario_fixed", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/scenarios/scenario_fixed", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveScenario_MissingFields(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/scenarios", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t,
		[]any{"scenario_type", "new_plan", "migration_rates", "winback_rate", "results"},
		decode(t, w).Meta["missing"])
}

func TestScenarioReport(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/scenarios", scenarioBody).Code)

	w := do(t, r, http.MethodGet, "/api/reports/scenarios?ids=scenario_fixed&format=html&title=Q1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<title>Q1</title>")
	assert.Contains(t, w.Body.String(), "<h1>Q1</h1>")

	w = do(t, r, http.MethodGet, "/api/reports/scenarios?ids=scenario_fixed,scenario_gone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/reports/scenarios", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
