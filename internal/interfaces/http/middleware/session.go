package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/shared/constants"
)

type SessionConfig struct {
	CookieName string
	MaxAge     int
	Secure     bool
}

// SessionMiddleware binds every request to a visitor session identified by
// a uuid cookie, issuing one when the cookie is missing or malformed.
type SessionMiddleware struct {
	store  session.Store
	config SessionConfig
}

func NewSessionMiddleware(store session.Store, config SessionConfig) *SessionMiddleware {
	return &SessionMiddleware{store: store, config: config}
}

func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(m.config.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		// refreshed on every request so an active visitor keeps the session
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.config.CookieName, id, m.config.MaxAge, "/", "", m.config.Secure, true)

		c.Set(constants.ContextKeySession, m.store.Load(id))
		c.Next()
	}
}

// SessionFrom returns the session bound by SessionMiddleware.
func SessionFrom(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(constants.ContextKeySession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
