package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/meaw-storefront/api/responses"
	"github.com/angelmondragon/meaw-storefront/api/validators"
	"github.com/angelmondragon/meaw-storefront/internal/notifications"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
)

const maxNotificationsLimit = 100

func notificationIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "notificationId"))
	if id == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "notification id is required"))
		return "", false
	}
	return id, true
}

// ListNotifications returns the feed newest first. limit=0 returns everything.
func ListNotifications(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxNotificationsLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ws.Notifications.List(notifications.ListParams{Limit: limit, UnreadOnly: unreadOnly}))
	}
}

func MarkNotificationRead(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		id, ok := notificationIDParam(w, r, logg)
		if !ok {
			return
		}
		if err := ws.Notifications.MarkRead(id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"read": true, "unread_count": ws.Notifications.UnreadCount()})
	}
}

func MarkAllNotificationsRead(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, map[string]int{"updated": ws.Notifications.MarkAllRead()})
	}
}

func DeleteNotification(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		id, ok := notificationIDParam(w, r, logg)
		if !ok {
			return
		}
		if err := ws.Notifications.Remove(id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true, "unread_count": ws.Notifications.UnreadCount()})
	}
}

func ClearNotifications(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, ok := requireWorkspace(w, r, logg)
		if !ok {
			return
		}
		ws.Notifications.Clear()
		responses.WriteSuccess(w, map[string]bool{"cleared": true})
	}
}
