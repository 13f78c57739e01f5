package api

import (
	"net/http"
	"strconv"
	"time"

	"ticketing-service/internal/util"

	"github.com/gin-gonic/gin"
)

// Roles carried by upstream auth claims.
const (
	RoleCustomer  = "customer"
	RoleValidator = "validator"
	RoleAdmin     = "admin"
)

const claimsKey = "claims"

// Claims is the already-verified caller identity resolved by upstream auth.
// The engine never re-derives these.
type Claims struct {
	UserID   int64
	TenantID int64
	Role     string
}

// claimsMiddleware extracts trusted identity headers. Requests without a
// complete set of claims are rejected before any handler runs.
func claimsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err1 := strconv.ParseInt(c.GetHeader("X-Tenant-ID"), 10, 64)
		userID, err2 := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		role := c.GetHeader("X-Role")

		if err1 != nil || err2 != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "UNAUTHENTICATED",
				"error": "missing or malformed identity claims",
			})
			return
		}

		c.Set(claimsKey, Claims{UserID: userID, TenantID: tenantID, Role: role})
		c.Next()
	}
}

// requireRole gates a route group on the caller's role claim, evaluated once
// per operation entry instead of ad hoc inside handlers.
func requireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getClaims(c)
		for _, role := range allowed {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":  "FORBIDDEN",
			"error": "role not permitted for this operation",
		})
	}
}

func getClaims(c *gin.Context) Claims {
	claims, _ := c.MustGet(claimsKey).(Claims)
	return claims
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
