package httpx

import (
	"errors"
	"net/http"
	"strings"
)

// tokenFromHeader extracts the opaque token from an Authorization header
// using the Token scheme.
func tokenFromHeader(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}

// requireToken rejects requests without a well-formed Token header before
// invoking the handler with the raw token.
func (r *Router) requireToken(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		raw, err := tokenFromHeader(req.Header.Get("Authorization"))
		if err != nil {
			r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, req, raw)
	}
}
