package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/card-resolver/internal/api/handlers"
	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/matching"
	"github.com/codyseavey/card-resolver/internal/models"
	"github.com/codyseavey/card-resolver/internal/pricing"
	"github.com/codyseavey/card-resolver/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakePricingAPI serves a tiny SportsCardsPro/PriceCharting catalog
func fakePricingAPI(t *testing.T, searches *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/products" && strings.Contains(r.URL.Query().Get("q"), "Outage"):
			w.WriteHeader(http.StatusBadGateway)
		case r.URL.Path == "/products":
			if searches != nil {
				searches.Add(1)
			}
			w.Write([]byte(`{"status":"success","products":[
				{"id":"100","product-name":"Roronoa Zoro OP01-001","console-name":"One Piece Romance Dawn"},
				{"id":"200","product-name":"C.J. Stroud #27","console-name":"Football Cards 2023 Panini Prizm","loose-price":1500}
			]}`))
		case r.URL.Path == "/product" && r.URL.Query().Get("id") == "100":
			w.Write([]byte(`{"status":"success","id":"100","product-name":"Roronoa Zoro OP01-001","console-name":"One Piece Romance Dawn","loose-price":2000,"graded-price":8000}`))
		case r.URL.Path == "/product" && r.URL.Query().Get("id") == "200":
			w.Write([]byte(`{"status":"success","id":"200","product-name":"C.J. Stroud #27","console-name":"Football Cards 2023 Panini Prizm","loose-price":1500}`))
		default:
			w.Write([]byte(`{"status":"error"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T, pricingURL string) *gin.Engine {
	t.Helper()

	store := catalog.NewMemoryStore()
	_, err := store.Upsert(
		models.CatalogRecord{ID: "op1-1", Game: models.GameOnePiece, Name: "Roronoa Zoro", SetName: "Romance Dawn", CollectorNumber: "001", Rarity: "L"},
		models.CatalogRecord{ID: "OP01-001_p1", Game: models.GameOnePiece, Name: "Roronoa Zoro", SetName: "Romance Dawn", CollectorNumber: "001", VariantType: "parallel", BasePrintID: "OP01-001"},
	)
	require.NoError(t, err)

	registry, err := matching.NewRegistry(store, matching.Tuning{}, &matching.Coalescer{})
	require.NoError(t, err)

	var svc *pricing.Service
	if pricingURL == "" {
		svc = pricing.NewService(nil, nil)
	} else {
		client := pricing.NewClient(pricing.ClientConfig{
			APIKey:      "token",
			BaseURL:     pricingURL,
			MinInterval: time.Millisecond,
			Backoff:     func(int) time.Duration { return 0 },
		})
		svc = pricing.NewService(client, client)
	}

	return SetupRouter(Dependencies{
		Identifier: registry,
		Store:      store,
		Pricing:    svc,
		Valuation:  services.NewValuationService(registry, svc),
		PriceCache: handlers.NewPriceCache(16, time.Minute),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthAndMiddleware(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), `"pricing_enabled":false`)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	w = doJSON(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "card_resolver_http_requests_total")
}

func TestIdentify(t *testing.T) {
	router := newTestRouter(t, "")

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantID     string
	}{
		{"direct card id", "/api/identify/onepiece", map[string]any{"card_id": "OP01-001"}, http.StatusOK, "OP01-001"},
		{"loose game name", "/api/identify/One%20Piece", map[string]any{"cardId": "op1-1"}, http.StatusOK, "OP01-001"},
		{"unknown game", "/api/identify/yugioh", map[string]any{"name": "Dark Magician"}, http.StatusNotFound, ""},
		{"sports has no catalog", "/api/identify/sports", map[string]any{"name": "CJ Stroud"}, http.StatusNotFound, ""},
		{"no identifying attributes", "/api/identify/onepiece", map[string]any{"year": 2023}, http.StatusBadRequest, ""},
		{"malformed body", "/api/identify/onepiece", "{", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantID == "" {
				return
			}
			var result models.MatchResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			require.NotNil(t, result.Record)
			assert.Equal(t, tt.wantID, result.Record.ID)
			assert.Equal(t, 1.0, result.Score)
			assert.Equal(t, models.ConfidenceHigh, result.Confidence.OverallConfidence)
			assert.Empty(t, result.Confidence.Warnings)
		})
	}
}

func TestIdentifyBatch(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/identify/batch", []map[string]any{
		{"game": "onepiece", "attributes": map[string]any{"card_id": "OP01-001"}},
		{"game": "yugioh", "attributes": map[string]any{"name": "x"}},
		{"game": "onepiece", "attributes": map[string]any{}},
		{"game": "onepiece", "attributes": map[string]any{"card_id": "OP09-999"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []struct {
			Index  int                 `json:"index"`
			Result *models.MatchResult `json:"result"`
			Error  string              `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 4)

	assert.Equal(t, "OP01-001", resp.Results[0].Result.Record.ID)
	assert.Contains(t, resp.Results[1].Error, "unknown game")
	assert.NotEmpty(t, resp.Results[2].Error)
	require.NotNil(t, resp.Results[3].Result)
	assert.Nil(t, resp.Results[3].Result.Record)
	assert.Equal(t, models.ConfidenceLow, resp.Results[3].Result.Confidence.OverallConfidence)
	for i, r := range resp.Results {
		assert.Equal(t, i, r.Index)
	}

	tooMany := make([]map[string]any, handlers.MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = map[string]any{"game": "onepiece", "attributes": map[string]any{"card_id": "OP01-001"}}
	}
	w = doJSON(t, router, http.MethodPost, "/api/identify/batch", tooMany)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/identify/batch", []map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVariants(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodGet, "/api/catalog/onepiece/op01-1/variants", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Card     models.CatalogRecord   `json:"card"`
		Variants []models.CatalogRecord `json:"variants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "OP01-001", resp.Card.ID)
	require.Len(t, resp.Variants, 2)
	assert.True(t, resp.Variants[0].IsBasePrint())

	w = doJSON(t, router, http.MethodGet, "/api/catalog/onepiece/EB99-001/variants", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatchPrice(t *testing.T) {
	var searches atomic.Int32
	router := newTestRouter(t, fakePricingAPI(t, &searches).URL)

	body := map[string]any{
		"game":       "sports",
		"attributes": map[string]any{"player_name": "CJ Stroud", "card_number": "027"},
	}

	w := doJSON(t, router, http.MethodPost, "/api/prices/match", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var match models.PriceMatch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &match))
	require.NotNil(t, match.Prices)
	assert.Equal(t, "200", match.Prices.ProductID)
	assert.Equal(t, 15.0, *match.Prices.Raw)
	assert.Equal(t, "C.J. Stroud #27", match.QueryUsed)

	w = doJSON(t, router, http.MethodPost, "/api/prices/match", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, int32(1), searches.Load())
}

func TestMatchPriceErrors(t *testing.T) {
	router := newTestRouter(t, fakePricingAPI(t, nil).URL)

	w := doJSON(t, router, http.MethodPost, "/api/prices/match", map[string]any{
		"game":       "sports",
		"attributes": map[string]any{"name": "Outage Player"},
	})
	require.Equal(t, http.StatusBadGateway, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusBadGateway), body["upstream_status"])
	assert.Equal(t, true, body["retryable"])

	w = doJSON(t, router, http.MethodPost, "/api/prices/match", map[string]any{"game": "chess", "attributes": map[string]any{"name": "x"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/prices/match", map[string]any{"game": "sports"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	disabled := newTestRouter(t, "")
	w = doJSON(t, disabled, http.MethodPost, "/api/prices/match", map[string]any{"game": "sports", "attributes": map[string]any{"name": "CJ Stroud"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestParallelsAndProductPrices(t *testing.T) {
	router := newTestRouter(t, fakePricingAPI(t, nil).URL)

	w := doJSON(t, router, http.MethodGet, "/api/prices/sports/parallels?name=CJ+Stroud&number=27", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Parallels []models.Parallel `json:"parallels"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Parallels, 1)
	assert.Equal(t, "200", resp.Parallels[0].ID)
	assert.True(t, resp.Parallels[0].HasPrice)

	w = doJSON(t, router, http.MethodGet, "/api/prices/onepiece/products/100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var prices models.NormalizedPriceSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prices))
	assert.Equal(t, 20.0, *prices.Raw)
	assert.Equal(t, 80.0, prices.ByTier[models.Tier9])

	w = doJSON(t, router, http.MethodGet, "/api/prices/onepiece/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEstimate(t *testing.T) {
	router := newTestRouter(t, "")

	w := doJSON(t, router, http.MethodPost, "/api/prices/estimate", map[string]any{
		"prices": map[string]any{"raw": 10, "by_tier": map[string]float64{"9": 100}},
		"grade":  9,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"estimated_value":68.5`)

	w = doJSON(t, router, http.MethodPost, "/api/prices/estimate", map[string]any{
		"prices": map[string]any{},
		"grade":  9,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"estimated_value":null`)

	w = doJSON(t, router, http.MethodPost, "/api/prices/estimate", map[string]any{
		"prices": map[string]any{"raw": 10},
		"grade":  11,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValuate(t *testing.T) {
	router := newTestRouter(t, fakePricingAPI(t, nil).URL)

	w := doJSON(t, router, http.MethodPost, "/api/valuate/onepiece", map[string]any{
		"attributes": map[string]any{"card_id": "OP01-001", "name": "Zoro"},
		"grade":      9,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var v models.Valuation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	require.NotNil(t, v.Identity.Record)
	assert.Equal(t, "OP01-001", v.Identity.Record.ID)
	assert.Equal(t, "Roronoa Zoro", v.Query.Name)
	require.NotNil(t, v.Pricing)
	assert.Equal(t, "100", v.Pricing.Prices.ProductID)
	require.NotNil(t, v.EstimatedValue)
	// 20 + (80 - 20) * 0.65
	assert.Equal(t, 59.0, *v.EstimatedValue)

	w = doJSON(t, router, http.MethodPost, "/api/valuate/onepiece", map[string]any{
		"attributes": map[string]any{"card_id": "OP01-001"},
		"grade":      0.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchCards(t *testing.T) {
	router := newTestRouter(t, "")

	search := func(query string) models.CatalogSearchResult {
		t.Helper()
		w := doJSON(t, router, http.MethodGet, "/api/catalog/onepiece/search?"+query, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result models.CatalogSearchResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		return result
	}

	result := search("q=zoro")
	require.Len(t, result.Records, 1)
	assert.Equal(t, "OP01-001", result.Records[0].ID)
	assert.False(t, result.HasMore)

	result = search("q=zoro&variants=true")
	assert.Equal(t, 2, result.TotalCount)

	result = search("q=zoro&variants=true&limit=1")
	assert.Len(t, result.Records, 1)
	assert.True(t, result.HasMore)

	result = search("q=zoro&set=Romance")
	assert.Len(t, result.Records, 1)

	result = search("q=luffy")
	assert.Empty(t, result.Records)

	w := doJSON(t, router, http.MethodGet, "/api/catalog/onepiece/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/catalog/onepiece/search?q=zoro&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
