package http

import (
	"net/http"
	"time"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

type CookieConfig struct {
	Production     bool
	Domain         string
	RefreshTTL     time.Duration
	RefreshTTLLong time.Duration
	Now            func() time.Time
}

// setAuthCookies writes both token cookies. Both expire with the refresh
// token so the browser keeps sending the access cookie until refresh can
// replace it.
func (c CookieConfig) setAuthCookies(w http.ResponseWriter, access, refresh string, persistent bool) {
	ttl := c.RefreshTTL
	if persistent {
		ttl = c.RefreshTTLLong
	}
	expires := c.now().Add(ttl)
	http.SetCookie(w, c.cookie(accessCookie, access, expires))
	http.SetCookie(w, c.cookie(refreshCookie, refresh, expires))
}

func (c CookieConfig) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookie, refreshCookie} {
		ck := c.cookie(name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		http.SetCookie(w, ck)
	}
}

func (c CookieConfig) cookie(name, value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if c.Production {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
		ck.Domain = c.Domain
	}
	return ck
}

func (c CookieConfig) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func cookieValue(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
