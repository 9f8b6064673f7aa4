package middleware

import (
	"net/http"
	"strconv"

	"github.com/semenovdl/recallbot/pkg/ctxutil"
)

// OwnerHeader is the request header carrying the caller's chat id.
const OwnerHeader = "X-Owner-Id"

// Owner returns middleware that extracts the owner's chat id from the
// X-Owner-Id header into the request context. A missing header passes
// through; handlers reject unidentified callers themselves. A malformed
// header is a client error and stops here.
func Owner() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(OwnerHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "invalid "+OwnerHeader+" header", http.StatusBadRequest)
				return
			}

			ctx := ctxutil.WithOwnerID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
