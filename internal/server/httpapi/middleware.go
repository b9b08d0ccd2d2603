package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/accountd/internal/common"
	"github.com/dmitrijs2005/accountd/internal/server/services"
)

type contextKey string

const contextKeyUserID contextKey = "accountd-user-id"

// requireAuth rejects requests without a valid bearer token with 401 and
// puts the token's user id into the request context.
func (h *Router) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			h.log.Debug(r.Context(), "authorization header invalid", "error", err, "path", r.URL.Path)
			writeMessage(w, http.StatusUnauthorized, services.MsgMissingToken)
			return
		}

		userID, err := h.accounts.Authenticate(r.Context(), token)
		if err != nil {
			msg := services.MsgInvalidToken
			var e *services.Error
			if errors.As(err, &e) {
				msg = e.Message
			}
			writeMessage(w, http.StatusUnauthorized, msg)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyUserID).(string)
	return id, ok && id != ""
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
