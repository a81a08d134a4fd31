package middleware

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"metro/internal/session"
)

const sessionContextKey = "session"

// SessionOptions configures the session cookie.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session loads the visitor's session state from the store, or starts a new
// one, and makes it available to handlers via SessionFrom. Handlers that
// change the state save it themselves.
func Session(store session.Store, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var state *session.State

		if id, err := c.Cookie(opts.CookieName); err == nil && id != "" {
			state, err = store.Get(c.Request.Context(), id)
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				log.Printf("[SESSION] load failed: session=%s err=%v", id, err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
				return
			}
		}
		if state == nil {
			state = session.New(uuid.New().String())
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, state.ID, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
		c.Set(sessionContextKey, state)
		c.Next()
	}
}

// SessionFrom returns the session state loaded by the Session middleware.
func SessionFrom(c *gin.Context) *session.State {
	if v, ok := c.Get(sessionContextKey); ok {
		if st, ok := v.(*session.State); ok {
			return st
		}
	}
	return nil
}

// SessionID returns the current session id, or "" outside the Session middleware.
func SessionID(c *gin.Context) string {
	if st := SessionFrom(c); st != nil {
		return st.ID
	}
	return ""
}
