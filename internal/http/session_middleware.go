package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"account-api/internal/service"
)

const (
	sessionCookieName = "session"
	sessionCookiePath = "/api"
	sessionClaimsKey  = "session_claims"
)

// SessionMiddleware intenta resolver la cookie de sesión en cada request.
// Una cookie ausente, vencida, adulterada o revocada se trata igual: no hay
// sesión y el handler decide si cae a verificación de credenciales. Este
// middleware nunca corta el request por sí mismo.
func SessionMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions != nil {
			if token, err := c.Cookie(sessionCookieName); err == nil && token != "" {
				if claims, err := sessions.Parse(token); err == nil {
					c.Set(sessionClaimsKey, claims)
				}
			}
		}
		c.Next()
	}
}

// GetSessionClaims obtiene los claims de sesión desde el contexto.
func GetSessionClaims(c *gin.Context) (service.SessionClaims, bool) {
	val, ok := c.Get(sessionClaimsKey)
	if !ok {
		return service.SessionClaims{}, false
	}
	claims, ok := val.(service.SessionClaims)
	return claims, ok
}

// setSessionCookie entrega el token como cookie HTTP-only limitada al API.
func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, maxAge, sessionCookiePath, "", true, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, sessionCookiePath, "", true, true)
}
