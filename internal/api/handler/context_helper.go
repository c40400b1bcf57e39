package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"workshop-funnel/pkg/response"
)

// MustGetUserID extracts user_id set by JWTAuth.
// On failure it writes a 401 and returns ok=false; the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "authentication required")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "authentication required")
		return "", false
	}
	return s, true
}

// MustGetToken extracts the jti and expiry of the presented access token.
func MustGetToken(c *gin.Context) (jti string, expiresAt time.Time, ok bool) {
	jti = c.GetString("token_jti")
	v, exists := c.Get("token_exp")
	if jti == "" || !exists {
		response.Unauthorized(c, 10002, "authentication required")
		return "", time.Time{}, false
	}
	expiresAt, ok = v.(time.Time)
	if !ok {
		response.Unauthorized(c, 10002, "authentication required")
		return "", time.Time{}, false
	}
	return jti, expiresAt, true
}

// MustGetUUIDParam reads a path parameter that must be a UUID and returns its canonical form.
// On failure it writes a 400 and returns ok=false; the caller should return.
func MustGetUUIDParam(c *gin.Context, name string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "invalid request parameters", name+" must be a valid UUID")
		return "", false
	}
	return id.String(), true
}
