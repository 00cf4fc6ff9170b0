package handlers

import (
	"log/slog"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/hooks"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/simdate"
)

const (
	msgProductsFailed   = "Error al cargar productos"
	msgPromotionsFailed = "Error al cargar promociones"
	msgAddToCartFailed  = "Error al agregar al carrito"
	msgNotInCart        = "El producto no está en el carrito"
)

type CatalogHandler struct {
	h      *hooks.Hooks
	logger *slog.Logger
}

func NewCatalogHandler(h *hooks.Hooks, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{h: h, logger: logger}
}

type productView struct {
	model.Product
	InCart int `json:"inCart"`
}

type productsPage struct {
	Products     []productView  `json:"products"`
	IsVIP        bool           `json:"isVip"`
	CartType     model.CartType `json:"cartType"`
	ActiveCartID int            `json:"activeCartId,omitempty"`
}

func (c *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := c.h.Products(r.Context())
	if err != nil {
		c.logger.Error("Load products", "error", err)
		WriteError(w, r, http.StatusBadGateway, msgProductsFailed)
		return
	}

	user := auth.FromContext(r.Context()).User()
	active, err := c.h.ActiveCart(r.Context(), user)
	if err != nil {
		// The catalog is still useful without cart quantities.
		c.logger.Warn("Resolve active cart", "error", err)
	}

	page := productsPage{
		Products: make([]productView, 0, len(products)),
		IsVIP:    user.IsVIP(),
		CartType: active.Type,
	}
	if active.Cart != nil {
		page.ActiveCartID = active.Cart.ID
	}
	for _, p := range products {
		v := productView{Product: p}
		if active.Cart != nil {
			v.InCart = active.Cart.QuantityOf(p.ID)
		}
		page.Products = append(page.Products, v)
	}
	writeJSON(w, http.StatusOK, page)
}

type quantityBody struct {
	Quantity int `json:"quantity"`
}

// AddToCart puts the product in the active cart, creating it if needed.
func (c *CatalogHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := intParam(r, "id")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	var body quantityBody
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid json")
			return
		}
	}

	active, err := c.h.ActiveCart(r.Context(), auth.FromContext(r.Context()).User())
	if err != nil {
		c.logger.Warn("Resolve active cart", "error", err)
	}
	item, err := c.h.AddToCart(r.Context(), productID, body.Quantity, active.Type)
	if err != nil {
		c.logger.Error("Add to cart", "product_id", productID, "error", err)
		WriteError(w, r, http.StatusBadGateway, clients.ErrorMessage(err, msgAddToCartFailed))
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateQuantity sets the quantity of a product already in the active cart.
func (c *CatalogHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := intParam(r, "id")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	var body quantityBody
	if err := decodeJSON(r, &body); err != nil || body.Quantity < 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid quantity")
		return
	}

	active, err := c.h.ActiveCart(r.Context(), auth.FromContext(r.Context()).User())
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, msgProductsFailed)
		return
	}
	if active.Cart == nil {
		WriteError(w, r, http.StatusNotFound, msgNotInCart)
		return
	}
	var itemID int
	for _, it := range active.Cart.Items {
		id := it.ProductID
		if it.Product != nil {
			id = it.Product.ID
		}
		if id == productID {
			itemID = it.ID
			break
		}
	}
	if itemID == 0 {
		WriteError(w, r, http.StatusNotFound, msgNotInCart)
		return
	}

	item, err := c.h.UpdateCartItemQuantity(r.Context(), active.Cart.ID, itemID, body.Quantity)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, clients.ErrorMessage(err, msgAddToCartFailed))
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type promotionsPage struct {
	model.PromotionList
	simdate.View
}

func (c *CatalogHandler) Promotions(w http.ResponseWriter, r *http.Request) {
	list, err := c.h.Promotions(r.Context())
	if err != nil {
		c.logger.Error("Load promotions", "error", err)
		WriteError(w, r, http.StatusBadGateway, msgPromotionsFailed)
		return
	}
	if list.Promotions == nil {
		list.Promotions = []model.Promotion{}
	}
	writeJSON(w, http.StatusOK, promotionsPage{
		PromotionList: list,
		View:          simdate.FromContext(r.Context()).View(),
	})
}
