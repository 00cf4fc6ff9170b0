package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/hooks"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

const (
	msgCartsFailed      = "Error al cargar los carritos"
	msgCartNotFound     = "Carrito no encontrado. Redirigiendo a productos..."
	msgFinalizeFailed   = "Error al finalizar el pedido"
	msgFinalized        = "¡Pedido finalizado con éxito!"
	msgInvalidCartType  = "Tipo de carrito inválido"
	msgCreateCartFailed = "Error al crear el carrito"
	msgUpdateFailed     = "Error al actualizar la cantidad"
	msgDeleteFailed     = "Error al eliminar el carrito"

	// notFoundRedirect sends the browser back to the catalog after a pause.
	notFoundRedirect = "1.5;url=" + middleware.LandingPath
)

type CartHandler struct {
	h      *hooks.Hooks
	logger *slog.Logger
}

func NewCartHandler(h *hooks.Hooks, logger *slog.Logger) *CartHandler {
	return &CartHandler{h: h, logger: logger}
}

type cartView struct {
	model.Cart
	TypeLabel   string `json:"typeLabel"`
	HasDiscount bool   `json:"hasDiscount"`
}

func newCartView(c model.Cart) cartView {
	return cartView{Cart: c, TypeLabel: c.CartType.Label(), HasDiscount: c.HasDiscount()}
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	f := clients.CartFilter{
		Status: model.CartStatus(r.URL.Query().Get("status")),
		Type:   model.CartType(r.URL.Query().Get("type")),
	}
	carts, err := h.h.Carts(r.Context(), f)
	if err != nil {
		h.logger.Error("Load carts", "error", err)
		WriteError(w, r, http.StatusBadGateway, msgCartsFailed)
		return
	}
	out := make([]cartView, 0, len(carts))
	for _, c := range carts {
		out = append(out, newCartView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body model.CreateCartRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid json")
			return
		}
	}
	if body.CartType == "" {
		body.CartType = model.CartTypeComun
	}
	if !body.CartType.Valid() {
		WriteError(w, r, http.StatusBadRequest, msgInvalidCartType)
		return
	}

	cart, err := h.h.CreateCart(r.Context(), body.CartType)
	if err != nil {
		h.logger.Error("Create cart", "type", body.CartType, "error", err)
		WriteError(w, r, http.StatusBadGateway, clients.ErrorMessage(err, msgCreateCartFailed))
		return
	}
	http.Redirect(w, r, "/carts/"+strconv.Itoa(cart.ID), http.StatusSeeOther)
}

// Detail answers any failure to load the cart with a delayed redirect to
// the catalog.
func (h *CartHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	cart, err := h.h.CartByID(r.Context(), id)
	if err != nil {
		if !clients.IsNotFound(err) {
			h.logger.Warn("Load cart", "cart_id", id, "error", err)
		}
		h.notFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Refresh", notFoundRedirect)
	WriteError(w, r, http.StatusNotFound, msgCartNotFound)
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid cart id")
		return
	}
	if err := h.h.DeleteCart(r.Context(), id); err != nil {
		h.logger.Error("Delete cart", "cart_id", id, "error", err)
		WriteError(w, r, statusFor(err), clients.ErrorMessage(err, msgDeleteFailed))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok1 := intParam(r, "id")
	itemID, ok2 := intParam(r, "itemId")
	if !ok1 || !ok2 {
		WriteError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	var body quantityBody
	if err := decodeJSON(r, &body); err != nil || body.Quantity < 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid quantity")
		return
	}

	item, err := h.h.UpdateCartItemQuantity(r.Context(), cartID, itemID, body.Quantity)
	if err != nil {
		WriteError(w, r, statusFor(err), clients.ErrorMessage(err, msgUpdateFailed))
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok1 := intParam(r, "id")
	itemID, ok2 := intParam(r, "itemId")
	if !ok1 || !ok2 {
		WriteError(w, r, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.h.DeleteCartItem(r.Context(), cartID, itemID); err != nil {
		WriteError(w, r, statusFor(err), clients.ErrorMessage(err, msgUpdateFailed))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type finalizeResult struct {
	Message string      `json:"message"`
	Order   model.Order `json:"order"`
}

func (h *CartHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid cart id")
		return
	}
	order, err := h.h.FinalizeOrder(r.Context(), id)
	if err != nil {
		h.logger.Info("Finalize rejected", "cart_id", id, "error", err)
		WriteError(w, r, statusFor(err), clients.ErrorMessage(err, msgFinalizeFailed))
		return
	}
	w.Header().Set("Location", "/orders")
	writeJSON(w, http.StatusCreated, finalizeResult{Message: msgFinalized, Order: order})
}
