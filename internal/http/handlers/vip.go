package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/hooks"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/model"
)

const (
	msgVipStatusFailed  = "Error al cargar el estado VIP"
	msgVipUsersFailed   = "Error al cargar usuarios VIP"
	msgVipChangesFailed = "Error al cargar los cambios VIP"
)

type VipHandler struct {
	h      *hooks.Hooks
	logger *slog.Logger
}

func NewVipHandler(h *hooks.Hooks, logger *slog.Logger) *VipHandler {
	return &VipHandler{h: h, logger: logger}
}

type vipPage struct {
	Status       model.VipStatus   `json:"status"`
	Users        []model.User      `json:"users"`
	UsersError   string            `json:"usersError,omitempty"`
	Changes      *model.VipChanges `json:"changes,omitempty"`
	ChangesError string            `json:"changesError,omitempty"`
}

// Status shows the caller's VIP status, the VIP user list and, when month
// and year are given, who gained or lost VIP in that month.
func (v *VipHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := v.h.VipStatus(r.Context())
	if err != nil {
		v.logger.Error("Load VIP status", "error", err)
		WriteError(w, r, http.StatusBadGateway, msgVipStatusFailed)
		return
	}
	page := vipPage{Status: status, Users: []model.User{}}

	// The user list fails independently of the status.
	if users, err := v.h.VipUsers(r.Context()); err != nil {
		v.logger.Warn("Load VIP users", "error", err)
		page.UsersError = msgVipUsersFailed
	} else if users != nil {
		page.Users = users
	}

	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	if month >= 1 && month <= 12 && year > 0 {
		changes, err := v.h.VipChanges(r.Context(), month, year)
		if err != nil {
			v.logger.Warn("Load VIP changes", "month", month, "year", year, "error", err)
			page.ChangesError = msgVipChangesFailed
		} else {
			page.Changes = &changes
		}
	}
	writeJSON(w, http.StatusOK, page)
}
