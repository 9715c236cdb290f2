package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie хранит идентификатор сессии; каждая сессия имеет своё хранилище корзины.
	SessionCookie = "carrinho_sessao"

	sessionKey    = "carrinho.session"
	sessionMaxAge = 365 * 24 * 60 * 60
)

// sessionMiddleware выдаёт новую сессию, если cookie нет или она не является uuid.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, sessionMaxAge, "/", "", false, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
