package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/internal/infrastructure/session"
	"github.com/turtacn/MolScope/pkg/errors"
)

const ctxKeySession = "molscope.session"

// SessionConfig describes the session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionState is the session attached to one request.
type SessionState struct {
	ID    string
	Data  *session.Data
	dirty bool
	store session.Store
}

// MarkDirty schedules the data to be written back.
func (s *SessionState) MarkDirty() { s.dirty = true }

// Session loads the visitor's session, creating one when the cookie is
// missing, malformed or expired, and refreshes the cookie.  Data marked
// dirty is written back after the handler unless SaveSession already did.
func Session(store session.Store, cfg SessionConfig, logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		state := &SessionState{store: store}

		if id, err := c.Cookie(cfg.CookieName); err == nil && session.ValidID(id) {
			data, err := store.Load(ctx, id)
			switch {
			case err == nil:
				state.ID, state.Data = id, data
			case errors.Is(err, session.ErrNotFound):
			case errors.IsCode(err, errors.ErrCodeSessionCorrupted):
				logger.Warn("discarding corrupted session", logging.String("session", id), logging.Err(err))
			default:
				logger.Error("session load failed", logging.Err(err), logging.String("request_id", GetRequestID(c)))
				AbortWithAppError(c, err)
				return
			}
		}
		if state.Data == nil {
			state.ID = session.NewID()
			state.Data = &session.Data{}
			state.dirty = true
		}

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cfg.CookieName,
			Value:    state.ID,
			Path:     "/",
			MaxAge:   int(cfg.TTL.Seconds()),
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		c.Set(ctxKeySession, state)

		c.Next()

		if state.dirty {
			if err := SaveSession(c); err != nil {
				logger.Error("session save failed", logging.Err(err), logging.String("request_id", GetRequestID(c)))
			}
		}
	}
}

// GetSession returns the session loaded by Session.  It panics when the
// middleware is not installed on the route.
func GetSession(c *gin.Context) *SessionState {
	return c.MustGet(ctxKeySession).(*SessionState)
}

// SaveSession writes the session now.  Handlers call it before redirecting
// so the next request sees the new data.
func SaveSession(c *gin.Context) error {
	state := GetSession(c)
	if err := state.store.Save(c.Request.Context(), state.ID, state.Data); err != nil {
		return err
	}
	state.dirty = false
	return nil
}
