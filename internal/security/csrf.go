package security

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-basket/internal/common"
)

// CSRF protects cookie-identified baskets using the double-submit technique.
// Requests that name their basket explicitly through ExemptHeader carry no
// ambient credential and are let through.
type CSRF struct {
	Header       string
	ExemptHeader string
}

// Middleware enforces that mutating requests include a CSRF token header matching a cookie.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	headerName := strings.TrimSpace(c.Header)
	if headerName == "" {
		headerName = "X-CSRF-Token"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !common.IsMutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if c.ExemptHeader != "" && strings.TrimSpace(r.Header.Get(c.ExemptHeader)) != "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(r.Header.Get(headerName))
		cookie, err := r.Cookie(headerName)
		switch {
		case token == "":
			forbidden(w, "missing csrf token")
		case err != nil || strings.TrimSpace(cookie.Value) == "":
			forbidden(w, "missing csrf cookie")
		case subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) != 1:
			forbidden(w, "invalid csrf token")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func forbidden(w http.ResponseWriter, detail string) {
	common.WriteProblem(w, common.Problem{Title: "Forbidden", Detail: detail, Status: http.StatusForbidden})
}
