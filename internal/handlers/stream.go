package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_inventory/internal/identity"
	"github.com/Skotchmaster/lab_inventory/internal/notify"
)

// StreamHandler bridges the notification bus to clients over SSE. Users
// get their own group; ?group=admin is restricted to the admin role.
type StreamHandler struct {
	Bus *notify.Bus
}

func (h *StreamHandler) Stream(c echo.Context) error {
	id, ok := identity.FromEcho(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	group := notify.UserGroup(id.Username)
	if c.QueryParam("group") == notify.AdminGroup {
		if !id.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		group = notify.AdminGroup
	}

	ch, cancel := h.Bus.Subscribe(group)
	defer cancel()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
