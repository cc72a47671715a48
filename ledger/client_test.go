package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wirelextechs/datagod/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-key")
}

func TestCreateOrder(t *testing.T) {
	var gotMethod, gotPath, gotKey string
	var gotRow map[string]any

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRow))
		w.WriteHeader(http.StatusCreated)
	})

	err := c.CreateOrder(context.Background(), model.Order{
		ShortID:          "a0001",
		GatewayReference: "ref-1",
		Status:           model.StatusPending,
		ExpectedTotal:    5075,
	})
	require.NoError(t, err)

	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "/orders", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "a0001", gotRow["short_id"])
	assert.Equal(t, string(model.StatusPending), gotRow["status"])
	assert.NotContains(t, gotRow, "id", "the store assigns row ids")
}

func TestCreateOrder_Conflict(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	err := c.CreateOrder(context.Background(), model.Order{ShortID: "a0001"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateOrder_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, "test-key")
	err := c.CreateOrder(context.Background(), model.Order{ShortID: "a0001"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFindOrderByShortID(t *testing.T) {
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"short_id":"a0001","gateway_reference":"ref-1","status":"PENDING","expected_total":5075}]`))
	})

	order, err := c.FindOrderByShortID(context.Background(), "a0001")
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "short_id=eq.a0001&limit=1", gotQuery)
	assert.Equal(t, "ref-1", order.GatewayReference)
	assert.Equal(t, model.StatusPending, order.Status)
}

func TestFindOrderByShortID_NotFoundIsNotAnError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	order, err := c.FindOrderByShortID(context.Background(), "z9999")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestCountOrders(t *testing.T) {
	var gotPrefer string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		w.Header().Set("Content-Range", "0-0/3573")
		w.Write([]byte(`[{"id":1}]`))
	})

	n, err := c.CountOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "count=exact", gotPrefer)
	assert.Equal(t, int64(3573), n)
}

func TestCountOrders_EmptyTable(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "*/0")
		w.Write([]byte(`[]`))
	})

	n, err := c.CountOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMarkPaid_ConditionalOnPending(t *testing.T) {
	var gotQuery string
	var gotPatch map[string]any

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		require.Equal(t, "PATCH", r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPatch))
		w.Write([]byte(`[{"short_id":"a0001","status":"PAID"}]`))
	})

	updated, err := c.MarkPaid(context.Background(), "ref-1")
	require.NoError(t, err)

	assert.True(t, updated)
	assert.Equal(t, "gateway_reference=eq.ref-1&status=eq.PENDING", gotQuery)
	assert.Equal(t, string(model.StatusPaid), gotPatch["status"])
}

func TestMarkPaid_AlreadyPaidUpdatesNothing(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// No row matched the status=eq.PENDING filter.
		w.Write([]byte(`[]`))
	})

	updated, err := c.MarkPaid(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestUpdateOrderStatus(t *testing.T) {
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"short_id":"a0001","status":"PROCESSING"}]`))
	})

	updated, err := c.UpdateOrderStatus(context.Background(), "a0001", model.StatusPaid, model.StatusProcessing)
	require.NoError(t, err)

	assert.True(t, updated)
	assert.Equal(t, "short_id=eq.a0001&status=eq.PAID", gotQuery)
}

func TestGetPackage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/packages", r.URL.Path)
		assert.Equal(t, "id=eq.7&limit=1", r.URL.RawQuery)
		w.Write([]byte(`[{"id":7,"package_name":"5GB MTN","data_value_gb":5,"price_ghs":50.00,"is_enabled":true}]`))
	})

	pkg, err := c.GetPackage(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, pkg)

	assert.Equal(t, "5GB MTN", pkg.PackageName)
	assert.Equal(t, 50.00, pkg.PriceGHS)
}

func TestListPackages_EnabledSortedByGB(t *testing.T) {
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"id":1,"package_name":"1GB MTN","data_value_gb":1,"price_ghs":4.80,"is_enabled":true},
			{"id":2,"package_name":"2GB MTN","data_value_gb":2,"price_ghs":9.40,"is_enabled":true}]`))
	})

	pkgs, err := c.ListPackages(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "is_enabled=eq.true&order=data_value_gb.asc", gotQuery)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "1GB MTN", pkgs[0].PackageName)
}

func TestListOrders_NewestFirst(t *testing.T) {
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"short_id":"b0001"},{"short_id":"a0001"}]`))
	})

	orders, err := c.ListOrders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "order=created_at.desc", gotQuery)
	require.Len(t, orders, 2)
	assert.Equal(t, "b0001", orders[0].ShortID)
}

func TestGetSettings(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/settings", r.URL.Path)
		w.Write([]byte(`[{"whatsapp_link":"https://wa.me/233241234567"}]`))
	})

	settings, err := c.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/233241234567", settings.WhatsAppLink)
}
