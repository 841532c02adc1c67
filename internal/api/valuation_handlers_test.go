package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	"github.com/mbjewelry/appraisal-server/internal/service"
)

func calculateBody() map[string]any {
	return map[string]any{
		"item_data": []map[string]string{
			{"box_id": "2", "box_no": "1", "material": "k18", "weight": "10.5g", "misc": "0.25"},
			{"box_id": "1", "box_no": "1", "material": "pt900", "weight": "3g"},
		},
		"price_data": []map[string]string{
			{"material": "gold", "price": "10000"},
			{"material": "platinum", "price": "5000"},
		},
	}
}

func TestCalculateEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seedAPIUser(t, st, "alice", "password123", domain.RoleUser)
	token := login(t, srv, "alice", "password123").AccessToken

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/calculate", token, calculateBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope[service.CalculateResponse](t, rec)
	require.Len(t, env.Data.CalculatedItems, 2)
	assert.Equal(t, 2, env.Data.TotalItems)

	// Sorted by box id.
	assert.Equal(t, int64(1), env.Data.CalculatedItems[0].BoxID)
	assert.Equal(t, int64(2), env.Data.CalculatedItems[1].BoxID)
	assert.InDelta(t, 3*5000.0+10.45*10000, env.Data.TotalValue, 1e-6)
}

func TestCalculateEndpointCSV(t *testing.T) {
	srv, st := newTestServer(t)
	seedAPIUser(t, st, "alice", "password123", domain.RoleUser)
	token := login(t, srv, "alice", "password123").AccessToken

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/calculate?format=csv", token, calculateBody())
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "calculated_result_")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.Equal(t, strings.Join(service.FixedColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,1,pt900,"), lines[1])
}

func TestCalculateEndpointUnknownFormat(t *testing.T) {
	srv, st := newTestServer(t)
	seedAPIUser(t, st, "alice", "password123", domain.RoleUser)
	token := login(t, srv, "alice", "password123").AccessToken

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/calculate?format=xml", token, calculateBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateEndpointEmptyBatch(t *testing.T) {
	srv, st := newTestServer(t)
	seedAPIUser(t, st, "alice", "password123", domain.RoleUser)
	token := login(t, srv, "alice", "password123").AccessToken

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/calculate", token, map[string]any{
		"item_data": []map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckWeightsEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	seedAPIUser(t, st, "alice", "password123", domain.RoleUser)
	token := login(t, srv, "alice", "password123").AccessToken

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/check-weights", token, map[string]any{
		"item_data": []map[string]string{
			{"box_id": "1", "box_no": "1", "weight": "10.5g"},
			{"box_id": "1", "box_no": "2", "weight": "unknown"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope[service.CheckWeightsResponse](t, rec)
	require.Len(t, env.Data.InvalidWeights, 1)
	assert.Equal(t, 1, env.Data.InvalidWeights[0].Index)
	assert.Equal(t, "unknown", env.Data.InvalidWeights[0].Weight)
}
