package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/http/middleware"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/response"
	"github.com/ignatzorin/hebammen-backend/internal/pkg/apperror"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// getActor собирает аутентифицированного участника из контекста запроса.
func getActor(c *gin.Context) (valueobject.Actor, bool) {
	userID, err := getUserID(c)
	if err != nil {
		response.Error(c, err)
		return valueobject.Actor{}, false
	}

	actor, err := valueobject.NewActor(userID, c.GetString(middleware.ContextRoleKey))
	if err != nil {
		response.Error(c, err)
		return valueobject.Actor{}, false
	}
	return actor, true
}

func parseUUIDParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getPagination(c *gin.Context) (limit, offset int) {
	limit = parseIntQuery(c, "limit", defaultLimit)
	offset = parseIntQuery(c, "offset", 0)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
