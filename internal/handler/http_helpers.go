package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Choos37ricK/blog-engine/internal/logger"
	"github.com/Choos37ricK/blog-engine/internal/repository"
	"github.com/Choos37ricK/blog-engine/internal/service"
	"github.com/gin-gonic/gin"
)

const defaultPageLimit = 10

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"result": false, "error": message})
}

func respondValidation(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"result": false, "errors": fields})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondValidation(c, map[string]string{"body": "invalid request body"})
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parsePage reads offset and limit; a missing limit falls back to the default page size.
func parsePage(c *gin.Context) (repository.Page, bool) {
	page := repository.Page{Limit: defaultPageLimit}
	fields := map[string]string{}

	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			fields["offset"] = "offset must be an integer"
		}
		page.Offset = value
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			fields["limit"] = "limit must be an integer"
		}
		page.Limit = value
	}

	if len(fields) > 0 {
		respondValidation(c, fields)
		return repository.Page{}, false
	}
	return page, true
}

// writeServiceError maps service errors onto HTTP statuses. Unknown errors are logged and
// answered with a generic 500.
func writeServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr.Fields)
	case errors.Is(err, service.ErrAlreadyVoted):
		respondValidation(c, map[string]string{"vote": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized), errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrPublishingDisabled):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPostNotFound), errors.Is(err, service.ErrCommentNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrVoteConflict):
		respondError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		logger.Get().Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}
