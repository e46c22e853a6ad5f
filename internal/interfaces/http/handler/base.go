package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/opsync/backend/internal/domain/shared"
	"github.com/opsync/backend/internal/interfaces/http/dto"
	"github.com/opsync/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getUserID extracts the authenticated user ID from JWT claims. Returns
// nil when the route is reachable without authentication.
func getUserID(c *gin.Context) *uuid.UUID {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return nil
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil
	}
	return &userID
}

// parseIDParam parses the :id path parameter as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, getRequestID(c)))
}

// BindingError reports a failed request bind. Validator failures are
// expanded into per-field details; anything else falls back to a plain
// 400 with the bind error text.
func (h *BaseHandler) BindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(validationErrors, getRequestID(c)))
		return
	}
	h.BadRequest(c, err.Error())
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, message, getRequestID(c)))
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, message, getRequestID(c)))
}

// HandleError converts domain errors to HTTP responses. Anything that is
// not a DomainError is reported as an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, getRequestID(c)))
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
