package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"account-api/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas del API.
func NewRouter(logger *zap.Logger, sessions *service.SessionService, userH *UserHandler, corsOrigin string) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type. Recovery
	// convierte cualquier pánico en un 500 sin detalle para el cliente.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api", corsMiddleware(corsOrigin), SessionMiddleware(sessions))

	v1 := api.Group("/v1")
	v1.GET("", apiRootHandler)

	user := v1.Group("/user")
	user.POST("/signup", userH.Signup)
	user.POST("/login", userH.Login)
	user.POST("/signout", userH.Signout)
	user.POST("/update", userH.Update)
	user.POST("/pupdate", userH.UpdatePassword)
	user.POST("/delete", userH.Delete)

	api.GET("/dev/user/getall", userH.GetAll)

	return r
}

// apiRootHandler valida el punto de entrada del API.
func apiRootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "You have accessed account-api API"})
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// corsMiddleware habilita el origen del cliente SPA con credenciales.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", "GET,HEAD,OPTIONS,POST,PUT")
		h.Set("Access-Control-Allow-Headers", "Origin, Accept, Content-Type, X-Requested-With, Access-Control-Request-Method, Access-Control-Request-Headers")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
