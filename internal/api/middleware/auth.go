package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const clientContextKey contextKey = "client"

// ClientFromContext returns the short fingerprint of the API key that
// authenticated the request, or "" when auth is disabled.
func ClientFromContext(ctx context.Context) string {
	c, _ := ctx.Value(clientContextKey).(string)
	return c
}

// APIKeyAuth accepts "Authorization: Bearer <key>" or "X-API-Key: <key>"
// when the key is one of keys. Keys are compared by SHA-256 digest in
// constant time. An empty key list disables authentication.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	hashes := make([][32]byte, 0, len(keys))
	for _, k := range keys {
		hashes = append(hashes, sha256.Sum256([]byte(k)))
	}

	return func(next http.Handler) http.Handler {
		if len(hashes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, ok := apiKeyFromRequest(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			hash := sha256.Sum256([]byte(apiKey))
			matched := 0
			for _, h := range hashes {
				matched |= subtle.ConstantTimeCompare(hash[:], h[:])
			}
			if matched != 1 {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			client := HashAPIKey(apiKey)[:12]
			if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
				info.client = client
			}
			ctx := context.WithValue(r.Context(), clientContextKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func apiKeyFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k, true
	}
	return "", false
}

// HashAPIKey returns the hex SHA-256 digest of key.
func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
