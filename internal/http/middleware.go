package http

import (
	"context"
	"net/http"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

const requestIDHeader = "Request-Id"

type requestIDKey struct{}

// requestIDHandler tags every request with a fresh xid, returned in the Request-Id header.
func requestIDHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := xid.New()
		w.Header().Set(requestIDHeader, id.String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDField(r *http.Request) zap.Field {
	id, _ := r.Context().Value(requestIDKey{}).(xid.ID)
	return zap.String("req_id", id.String())
}
