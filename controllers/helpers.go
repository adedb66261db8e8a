package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"

	"github.com/cppla/postfeed/middleware"
	"github.com/cppla/postfeed/services"
	"github.com/cppla/postfeed/utils"
)

// errorCodes are the envelope codes used when a service error is rendered.
type errorCodes struct {
	notFound  int
	forbidden int
	invalid   int
	internal  int
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Internal errors are logged and answered with msg only.
func respondServiceError(ctx *gin.Context, err error, codes errorCodes, msg string) {
	switch {
	case hasUnclassified(err):
		utils.Sugar.Errorw(msg, "err", err, "path", ctx.FullPath(), "request_id", ctx.GetString(utils.ContextRequestIDKey))
		utils.Error(ctx, http.StatusInternalServerError, codes.internal, msg)
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, codes.notFound, notFoundMessage(err))
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, codes.forbidden, "access denied")
	case errors.Is(err, services.ErrInvalid):
		utils.Error(ctx, http.StatusBadRequest, codes.invalid, err.Error())
	default:
		utils.Sugar.Errorw(msg, "err", err, "path", ctx.FullPath(), "request_id", ctx.GetString(utils.ContextRequestIDKey))
		utils.Error(ctx, http.StatusInternalServerError, codes.internal, msg)
	}
}

// hasUnclassified reports whether err, or any error combined into it, is
// outside the service taxonomy. Such errors always render as internal.
func hasUnclassified(err error) bool {
	for _, e := range multierr.Errors(err) {
		if !errors.Is(e, services.ErrNotFound) && !errors.Is(e, services.ErrForbidden) && !errors.Is(e, services.ErrInvalid) {
			return true
		}
	}
	return false
}

// notFoundMessage names the missing entities, e.g. "post 3 not found; user 9 not found".
func notFoundMessage(err error) string {
	msg := strings.ReplaceAll(err.Error(), ": "+services.ErrNotFound.Error(), " not found")
	if msg == services.ErrNotFound.Error() {
		return "not found"
	}
	return msg
}

// parseID accepts positive base-10 integers only.
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseCursor treats an absent, empty, "null" or zero cursor as the start of the feed.
func parseCursor(raw string) (uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "0" {
		return 0, true
	}
	return parseID(raw)
}

func parseLimit(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return services.DefaultPageSize, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > services.MaxPageSize {
		return 0, false
	}
	return n, true
}

func callerID(ctx *gin.Context) (uint, bool) {
	uid, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return uid, ok
}
