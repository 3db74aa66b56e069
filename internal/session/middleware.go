package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	CookieName = "tc_session"

	contextKey = "session"
)

// Middleware attaches the client's session state to the echo context,
// creating a fresh session (and setting the cookie) on first contact.
func Middleware(manager *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var state *State

			cookie, err := c.Cookie(CookieName)
			if err == nil && cookie.Value != "" {
				state, _ = manager.Lookup(cookie.Value)
			}
			if state == nil {
				id, created := manager.Create()
				state = created
				c.SetCookie(&http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
				})
			}

			c.Set(contextKey, state)
			return next(c)
		}
	}
}

// FromContext returns the session state set by Middleware.
func FromContext(c echo.Context) *State {
	state, _ := c.Get(contextKey).(*State)
	return state
}
