package handlers

import (
	"log/slog"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/hooks"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

const msgOrdersFailed = "Error al cargar los pedidos"

type OrderHandler struct {
	h      *hooks.Hooks
	logger *slog.Logger
}

func NewOrderHandler(h *hooks.Hooks, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{h: h, logger: logger}
}

func (o *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := o.h.Orders(r.Context())
	if err != nil {
		o.logger.Error("Load orders", "error", err)
		WriteError(w, r, http.StatusBadGateway, msgOrdersFailed)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
