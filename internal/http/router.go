package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	db Pinger,
	authz Authorizer,
	authH *AuthHandler,
	userH *UserHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()
	// Los numeros de servicio contienen "/" (N/12); se enrutan escapados como N%2F12.
	r.UseRawPath = true
	r.UnescapePathValues = true

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", HealthHandler(logger, db))

	bearer := BearerAuthMiddleware(logger, authz)

	auth := r.Group("/auth")
	auth.POST("/identify", authH.Identify)
	auth.POST("/verify", authH.Verify)
	auth.GET("/me", bearer, authH.Me)
	auth.POST("/logout", bearer, authH.Logout)

	r.GET("/users", bearer, userH.ListUsers)

	if adminH != nil {
		admin := r.Group("/admin", bearer, RequireAdmin())
		admin.POST("/identities", adminH.CreateIdentity)
		admin.GET("/identities", adminH.ListIdentities)
		admin.GET("/identities/:serviceNumber", adminH.GetIdentity)
		admin.PATCH("/identities/:serviceNumber", adminH.UpdateIdentity)
		admin.POST("/identities/:serviceNumber/passcode", adminH.ResetPasscode)
		admin.POST("/identities/:serviceNumber/image-upload", adminH.ImageUploadURL)
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap. Nunca
// registra cuerpos: pueden contener passcodes.
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
