package listing

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-sync/core/coordinator"
	"query-sync/feature/listing/models"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	db := testDB(t)
	seedListings(t, db)

	app := fiber.New()
	feature := NewFeature(db, coordinator.Policy{}, nil, nil)
	require.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	t.Cleanup(feature.Service().Close)
	return app
}

func decodeState(t *testing.T, resp *http.Response) State {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var state State
	require.NoError(t, json.Unmarshal(body, &state))
	return state
}

func TestHandleQuery(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings?manufacturer=audi", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	state := decodeState(t, resp)
	assert.Len(t, state.Items, 2)
	assert.Equal(t, int64(2), state.TotalCount)
	assert.False(t, state.Loading)
}

func TestHandleQueryWithOverlay(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings?hl_body_style=suv", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	state := decodeState(t, resp)
	assert.Len(t, state.Items, 5)
	assert.Equal(t, int64(2), state.Statistics["body_style"].Matching)
}

func TestHandleRefresh(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/listings/refresh", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	state := decodeState(t, resp)
	assert.Equal(t, int64(5), state.TotalCount)
}

func TestHandleInvalidate(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/listings/invalidate", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleBackWithoutHistory(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/listings/back", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleBackAfterQueries(t *testing.T) {
	app := testApp(t)

	for _, target := range []string{"/listings?manufacturer=audi", "/listings?manufacturer=bmw"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), 5000)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/listings/back", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "manufacturer=audi", payload["address"])
}

func TestHandleSnapshotReturnsCurrentState(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings", nil), 5000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/listings/snapshot", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	state := decodeState(t, resp)
	assert.Equal(t, int64(5), state.TotalCount)
	assert.False(t, state.Loading)
}

func TestHandleSnapshotByNameUnconfigured(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings/snapshot?name=snapshots/abc.json", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleShareUnconfigured(t *testing.T) {
	app := testApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/listings/share", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleSyncFeedsMirror(t *testing.T) {
	app := testApp(t)

	snapshotBody, err := json.Marshal(State{
		Items:      []models.Listing{{ID: 7, Manufacturer: "audi", Model: "a8"}},
		TotalCount: 7,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/listings/sync", bytes.NewReader(snapshotBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/listings/mirror", nil), 5000)
		if err != nil || resp.StatusCode != fiber.StatusOK {
			return false
		}
		return decodeState(t, resp).TotalCount == 7
	}, 5*time.Second, 20*time.Millisecond)
}

func TestHandleSyncRejectsMalformedBody(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(http.MethodPost, "/listings/sync", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
