package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// CORS allows any origin, method and header.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:              []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:             []string{"Content-Length"},
		MaxAge:                    corsMaxAge,
		OptionsResponseStatusCode: http.StatusOK,
	})
}
