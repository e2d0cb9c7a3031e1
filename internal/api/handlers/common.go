package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// getUserID extracts the authenticated user ID from context
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}

	switch v := userIDVal.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, fmt.Errorf("invalid user ID type in context")
	}
}

// getRequestID extracts request ID from context
func getRequestID(c *gin.Context) string {
	if reqID, exists := c.Get("request_id"); exists {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return ""
}

// currentUser resolves the caller or writes a 401 and returns false
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		SendUnauthorized(c, MsgUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// pathUUID parses a UUID path parameter or writes a 400 and returns false
func pathUUID(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		SendBadRequest(c, code, fmt.Sprintf("%s must be a valid id", name))
		return uuid.Nil, false
	}
	return id, true
}

// windowQuery reads ?window=N, falling back to def when absent
func windowQuery(c *gin.Context, def int) (int, bool) {
	raw := c.Query("window")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		SendBadRequest(c, ErrCodeInvalidWindow, "window must be a positive number of days")
		return 0, false
	}
	return n, true
}

// bindJSON binds the body and reports binding failures as field errors
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[lowerFirst(fe.Field())] = fe.Tag()
			}
			SendValidationError(c, MsgInvalidRequest, fields)
			return false
		}
		SendBadRequest(c, ErrCodeInvalidRequest, MsgInvalidRequest, map[string]interface{}{"error": err.Error()})
		return false
	}
	return true
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
