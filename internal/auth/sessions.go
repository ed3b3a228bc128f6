package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const SessionCookieName = "scoresheet_session"

// CookieCodec signs session ids so a client cannot forge one. With an empty
// secret values pass through unsigned, which is only accepted outside prod.
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret []byte) CookieCodec {
	return CookieCodec{secret: append([]byte(nil), secret...)}
}

func (c CookieCodec) signed() bool { return len(c.secret) > 0 }

func (c CookieCodec) mac(id string) []byte {
	m := hmac.New(sha256.New, c.secret)
	m.Write([]byte(id))
	return m.Sum(nil)
}

// EncodeSessionID returns "<id>.<base64url hmac>".
func (c CookieCodec) EncodeSessionID(sessionID string) string {
	if !c.signed() {
		return sessionID
	}
	return sessionID + "." + base64.RawURLEncoding.EncodeToString(c.mac(sessionID))
}

// DecodeSessionID verifies a value produced by EncodeSessionID. It is used
// for both the cookie and the bearer token form.
func (c CookieCodec) DecodeSessionID(value string) (string, bool) {
	if !c.signed() {
		return value, value != ""
	}

	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, c.mac(id)) {
		return "", false
	}
	return id, true
}

func sessionCookie(value string, maxAge int, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
		Expires:  expires,
	}
}

func SetSessionCookie(w http.ResponseWriter, value string, ttl time.Duration, secure bool) {
	http.SetCookie(w, sessionCookie(value, int(ttl.Seconds()), time.Now().Add(ttl), secure))
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, sessionCookie("", -1, time.Unix(0, 0), secure))
}
