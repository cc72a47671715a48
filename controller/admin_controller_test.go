package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wirelextechs/datagod/model"
)

func adminLogin(t *testing.T, app *fiber.App, token string) (*http.Response, map[string]any) {
	t.Helper()
	raw, _ := json.Marshal(map[string]string{"token": token})
	req := httptest.NewRequest("POST", "/api/admin/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func TestAdminLogin(t *testing.T) {
	app := newTestApp(t, newStubLedger(), &stubGateway{})

	resp, body := adminLogin(t, app, "super-secret-admin-token")
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, body = adminLogin(t, app, "guessed-token")
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestAdminOrders_RequiresToken(t *testing.T) {
	app := newTestApp(t, newStubLedger(), &stubGateway{})

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAdminOrders_ListsWithValidToken(t *testing.T) {
	l := newStubLedger()
	l.orders["ref-1"] = &model.Order{ShortID: "a0001", GatewayReference: "ref-1", Status: model.StatusPaid}
	app := newTestApp(t, l, &stubGateway{})

	_, loginBody := adminLogin(t, app, "super-secret-admin-token")
	jwt := loginBody["token"].(string)

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+jwt)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	require.Equal(t, 200, resp.StatusCode)
	var orders []model.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "a0001", orders[0].ShortID)
}

func TestAdminUpdateStatus(t *testing.T) {
	l := newStubLedger()
	l.orders["ref-1"] = &model.Order{ShortID: "a0001", GatewayReference: "ref-1", Status: model.StatusPaid}
	app := newTestApp(t, l, &stubGateway{})

	_, loginBody := adminLogin(t, app, "super-secret-admin-token")
	jwt := loginBody["token"].(string)

	patch := func(shortID, status string) *http.Response {
		raw, _ := json.Marshal(map[string]string{"status": status})
		req := httptest.NewRequest("PATCH", "/api/admin/orders/"+shortID+"/status", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+jwt)
		resp, err := app.Test(req, 5000)
		require.NoError(t, err)
		return resp
	}

	resp := patch("a0001", "PROCESSING")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, model.StatusProcessing, l.orders["ref-1"].Status)

	resp = patch("a0001", "FULFILLED")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, model.StatusFulfilled, l.orders["ref-1"].Status)

	// FULFILLED is terminal.
	resp = patch("a0001", "CANCELLED")
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, model.StatusFulfilled, l.orders["ref-1"].Status)

	// Unknown order and garbage status.
	assert.Equal(t, 404, patch("z9999", "PROCESSING").StatusCode)
	assert.Equal(t, 400, patch("a0001", "REFUNDED").StatusCode)
}
