// internal/httpserver/auth.go
//
// Session tokens.
//   - Tokens are HS256 JWTs carrying the session ID in "sid".
//   - The signing key is derived from SESSION_SECRET with HKDF-SHA256.
//   - Tokens are accepted from "Authorization: Bearer" or the session cookie.
//   - requireSession checks the token names the session in the URL and
//     places the store entry into the request context.

package httpserver

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/wordle/apps/solver/internal/store"
)

const tokenInfo = "wordle-solver session token v1"

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// deriveKey expands secret into a 32-byte signing key.
func deriveKey(secret string) []byte {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(tokenInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255*hash-size bytes
		panic(err)
	}
	return key
}

// signSessionToken creates a token for session id, valid for cfg.SessionTTL.
func (s *Server) signSessionToken(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	ss, err := t.SignedString(s.key)
	return ss, exp, err
}

// parseSessionToken verifies signature and expiry and returns the claims.
func (s *Server) parseSessionToken(tok string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !t.Valid || claims.SID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// setSessionCookie writes the token cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, s.cookie(token, exp, 0))
}

// clearSessionCookie deletes the token cookie.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", time.Time{}, -1))
}

func (s *Server) cookie(value string, exp time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	}
}

// bearerOrCookie extracts a token from the Authorization header or cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- session middleware ---------------------------

type ctxEntryKey struct{}

// requireSession enforces a valid token for the {id} URL parameter and
// injects the store entry into the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims, err := s.parseSessionToken(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.SID != chi.URLParam(r, "id") {
			writeError(w, http.StatusForbidden, "token is for another session")
			return
		}
		e, err := s.store.Get(r.Context(), claims.SID)
		if err != nil {
			writeErr(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxEntryKey{}, e)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// entryFrom returns the entry placed by requireSession.
func entryFrom(r *http.Request) *store.Entry {
	e, _ := r.Context().Value(ctxEntryKey{}).(*store.Entry)
	return e
}
