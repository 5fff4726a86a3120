package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
)

const (
	realmHeader  = `Basic realm="Admin Area"`
	unauthorized = "Unauthorized"
)

// Credentials for the admin area.
type Credentials struct {
	Username string
	Password string
}

func (cr Credentials) match(user, pass string) bool {
	u := subtle.ConstantTimeCompare([]byte(user), []byte(cr.Username))
	p := subtle.ConstantTimeCompare([]byte(pass), []byte(cr.Password))
	return u&p == 1
}

// BasicAuth rejects requests without valid admin credentials with a JSON body.
func BasicAuth(cr Credentials, logger zerolog.Logger) gin.HandlerFunc {
	return basicAuth(cr, logger, func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.MessageResponse{Message: unauthorized})
	})
}

// BasicAuthText is BasicAuth for plain-text endpoints.
func BasicAuthText(cr Credentials, logger zerolog.Logger) gin.HandlerFunc {
	return basicAuth(cr, logger, func(c *gin.Context) {
		c.String(http.StatusUnauthorized, unauthorized)
		c.Abort()
	})
}

func basicAuth(cr Credentials, logger zerolog.Logger, reject gin.HandlerFunc) gin.HandlerFunc {
	logger = logger.With().Str("component", "AdminAuth").Logger()
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			logger.Warn().Msg("authorization header missing or not basic auth")
			c.Header("WWW-Authenticate", realmHeader)
			reject(c)
			return
		}
		if !cr.match(user, pass) {
			logger.Warn().Str("user", user).Msg("admin auth failed")
			c.Header("WWW-Authenticate", realmHeader)
			reject(c)
			return
		}
		logger.Info().Str("user", user).Msg("admin auth successful")
		c.Next()
	}
}
