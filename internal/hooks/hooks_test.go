package hooks

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/query"
)

type fixedDate struct {
	mu   sync.Mutex
	date *string
}

func (d *fixedDate) Date() *string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.date
}

func (d *fixedDate) set(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.date = &s
}

type reply struct {
	status int
	body   string
}

type backend struct {
	mu      sync.Mutex
	replies map[string]reply
	hits    map[string]int
	queries []string
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *backend) setReply(route string, r reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[route] = r
}

func newHooks(t *testing.T, replies map[string]reply) (*Hooks, *backend, *fixedDate) {
	t.Helper()
	b := &backend{replies: replies, hits: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.hits[route]++
		b.queries = append(b.queries, r.URL.RawQuery)
		rep, ok := b.replies[route]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
			return
		}
		if rep.status == 0 {
			rep.status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		_, _ = io.WriteString(w, rep.body)
	}))
	t.Cleanup(srv.Close)

	c := clients.NewClient("backend", srv.URL, &http.Client{Timeout: 5 * time.Second})
	date := &fixedDate{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(query.NewClient(time.Minute, nil), date, NewServices(c), logger), b, date
}

func TestProductsAreCached(t *testing.T) {
	h, b, _ := newHooks(t, map[string]reply{
		"GET /products/": {body: `[{"id":1,"name":"Mate","price":"10.00"}]`},
	})
	ctx := context.Background()

	first, err := h.Products(ctx)
	require.NoError(t, err)
	second, err := h.Products(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, b.count("GET /products/"))

	// Unrelated invalidations leave the entry alone.
	h.Query().Invalidate(ctx, query.K(ResourceCarts))
	_, err = h.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.count("GET /products/"))
}

func TestErrorsAreNotCached(t *testing.T) {
	h, b, _ := newHooks(t, map[string]reply{
		"GET /orders/": {status: http.StatusInternalServerError, body: `{"error":"boom"}`},
	})
	ctx := context.Background()

	_, err := h.Orders(ctx)
	require.Error(t, err)
	_, err = h.Orders(ctx)
	require.Error(t, err)
	assert.Equal(t, 2, b.count("GET /orders/"))
}

func TestDisabledQueriesSkipTheBackend(t *testing.T) {
	h, b, _ := newHooks(t, map[string]reply{})
	ctx := context.Background()

	_, err := h.CartByID(ctx, 0)
	assert.ErrorIs(t, err, query.ErrDisabled)
	_, err = h.PromotionsByDate(ctx, "")
	assert.ErrorIs(t, err, query.ErrDisabled)
	_, err = h.VipChanges(ctx, 0, 2024)
	assert.ErrorIs(t, err, query.ErrDisabled)
	_, err = h.VipChanges(ctx, 3, 0)
	assert.ErrorIs(t, err, query.ErrDisabled)

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Empty(t, b.hits)
}

func TestPromotionsKeyFollowsSimulatedDate(t *testing.T) {
	h, b, date := newHooks(t, map[string]reply{
		"GET /promotions/special-dates/": {body: `{"effective_date":"2024-01-01","promotions":[]}`},
	})
	ctx := context.Background()

	_, err := h.Promotions(ctx)
	require.NoError(t, err)
	_, err = h.Promotions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.count("GET /promotions/special-dates/"))

	date.set("2024-12-24")
	_, err = h.Promotions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.count("GET /promotions/special-dates/"))
	assert.False(t, h.Query().IsStale(PromotionsKey(strPtr("2024-12-24")), promotionsStaleTime))
}

func TestUpdateCartItemQuantityInvalidatesCartAndList(t *testing.T) {
	h, _, date := newHooks(t, map[string]reply{
		"GET /carts/":             {body: `[]`},
		"GET /carts/5/":           {body: `{"id":5,"cart_type":"COMUN","status":"ACTIVO","subtotal":"0","total_payable":"0"}`},
		"PATCH /carts/5/items/7/": {body: `{"id":7,"quantity":3,"unit_price":"1","total_price":"3"}`},
		"GET /products/":          {body: `[]`},
	})
	date.set("2024-05-01")
	ctx := context.Background()

	listFilter := clients.CartFilter{Status: model.CartStatusActivo}
	_, err := h.Carts(ctx, listFilter)
	require.NoError(t, err)
	_, err = h.CartByID(ctx, 5)
	require.NoError(t, err)
	_, err = h.Products(ctx)
	require.NoError(t, err)

	listKey := CartsKey(clients.CartFilter{Status: model.CartStatusActivo, Fecha: "2024-05-01"})
	cartKey := CartKey(5, strPtr("2024-05-01"))
	require.False(t, h.Query().IsStale(listKey, 0))
	require.False(t, h.Query().IsStale(cartKey, 0))

	item, err := h.UpdateCartItemQuantity(ctx, 5, 7, 3)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 3, item.Quantity)

	assert.True(t, h.Query().IsStale(listKey, 0))
	assert.True(t, h.Query().IsStale(cartKey, 0))
	assert.False(t, h.Query().IsStale(query.K(ResourceProducts), 0))
}

func TestDeleteCartItemOnlyInvalidatesThatCart(t *testing.T) {
	h, _, _ := newHooks(t, map[string]reply{
		"GET /carts/":              {body: `[]`},
		"GET /carts/5/":            {body: `{"id":5}`},
		"GET /carts/6/":            {body: `{"id":6}`},
		"DELETE /carts/5/items/7/": {status: http.StatusNoContent},
	})
	ctx := context.Background()

	_, err := h.Carts(ctx, clients.CartFilter{})
	require.NoError(t, err)
	_, err = h.CartByID(ctx, 5)
	require.NoError(t, err)
	_, err = h.CartByID(ctx, 6)
	require.NoError(t, err)

	require.NoError(t, h.DeleteCartItem(ctx, 5, 7))

	assert.True(t, h.Query().IsStale(CartKey(5, nil), 0))
	assert.False(t, h.Query().IsStale(CartKey(6, nil), 0))
	assert.False(t, h.Query().IsStale(CartsKey(clients.CartFilter{}), 0))
}

func TestAddToCartInvalidatesResolvedCart(t *testing.T) {
	h, b, _ := newHooks(t, map[string]reply{
		"GET /carts/":          {body: `[]`},
		"POST /carts/":         {status: http.StatusCreated, body: `{"id":9,"cart_type":"VIP","status":"ACTIVO"}`},
		"GET /carts/9/":        {body: `{"id":9,"cart_type":"VIP","status":"ACTIVO"}`},
		"POST /carts/9/items/": {status: http.StatusCreated, body: `{"id":1,"product_id":4,"quantity":1}`},
	})
	ctx := context.Background()

	_, err := h.CartByID(ctx, 9)
	require.NoError(t, err)
	_, err = h.Carts(ctx, clients.CartFilter{})
	require.NoError(t, err)

	item, err := h.AddToCart(ctx, 4, 0, model.CartTypeVIP)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 1, b.count("POST /carts/"))

	assert.True(t, h.Query().IsStale(CartKey(9, nil), 0))
	assert.True(t, h.Query().IsStale(CartsKey(clients.CartFilter{}), 0))
}

func TestMutationFailureKeepsCache(t *testing.T) {
	h, _, _ := newHooks(t, map[string]reply{
		"GET /orders/":         {body: `[]`},
		"POST /orders/create/": {status: http.StatusBadRequest, body: `{"error":"El carrito está vacío"}`},
	})
	ctx := context.Background()

	_, err := h.Orders(ctx)
	require.NoError(t, err)

	_, err = h.FinalizeOrder(ctx, 3)
	require.Error(t, err)
	assert.Equal(t, "El carrito está vacío", clients.ErrorMessage(err, "Error al finalizar el pedido"))
	assert.False(t, h.Query().IsStale(query.K(ResourceOrders), 0))
}

func TestFinalizeAndSessionEndedInvalidations(t *testing.T) {
	h, _, _ := newHooks(t, map[string]reply{
		"GET /orders/":         {body: `[]`},
		"POST /orders/create/": {status: http.StatusCreated, body: `{"id":1,"cart":3,"total_paid":"10.00"}`},
		"GET /session/me/":     {body: `{"user":{"id":1,"username":"ana"}}`},
	})
	ctx := context.Background()

	_, err := h.Orders(ctx)
	require.NoError(t, err)
	user, err := h.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)

	order, err := h.FinalizeOrder(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, order.Cart)
	assert.True(t, h.Query().IsStale(query.K(ResourceOrders), 0))
	assert.False(t, h.Query().IsStale(query.K(ResourceCurrentUser), 0))

	h.SessionEnded(ctx)
	assert.True(t, h.Query().IsStale(query.K(ResourceCurrentUser), 0))
}

func TestActiveCartType(t *testing.T) {
	vip := &model.User{Profile: &model.Profile{IsVIP: true}}
	regular := &model.User{Profile: &model.Profile{}}
	promo := []model.Promotion{{ID: 1}}

	tests := []struct {
		name   string
		user   *model.User
		promos []model.Promotion
		want   model.CartType
	}{
		{"vip wins over promotions", vip, promo, model.CartTypeVIP},
		{"promotion day", regular, promo, model.CartTypeFechaEspecial},
		{"anonymous on promotion day", nil, promo, model.CartTypeFechaEspecial},
		{"plain day", regular, nil, model.CartTypeComun},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActiveCartType(tt.user, tt.promos))
		})
	}
}

func TestActiveCartPicksMatchingType(t *testing.T) {
	h, b, _ := newHooks(t, map[string]reply{
		"GET /promotions/special-dates/": {body: `{"promotions":[{"id":2,"description":"Navidad"}]}`},
		"GET /carts/": {body: `[
			{"id":1,"cart_type":"COMUN","status":"ACTIVO"},
			{"id":2,"cart_type":"FECHA_ESPECIAL","status":"ACTIVO"}
		]`},
	})
	ctx := context.Background()

	active, err := h.ActiveCart(ctx, &model.User{Username: "ana"})
	require.NoError(t, err)
	assert.Equal(t, model.CartTypeFechaEspecial, active.Type)
	require.NotNil(t, active.Cart)
	assert.Equal(t, 2, active.Cart.ID)

	b.mu.Lock()
	assert.Contains(t, b.queries, "status=ACTIVO")
	b.mu.Unlock()

	vip, err := h.ActiveCart(ctx, &model.User{Profile: &model.Profile{IsVIP: true}})
	require.NoError(t, err)
	assert.Equal(t, model.CartTypeVIP, vip.Type)
	assert.Nil(t, vip.Cart)
	assert.Equal(t, 1, b.count("GET /promotions/special-dates/"))
}

func strPtr(s string) *string { return &s }
