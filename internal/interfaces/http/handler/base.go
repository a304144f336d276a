package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/interfaces/http/dto"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// dateLayout is the format of date query parameters
const dateLayout = "2006-01-02"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 validation response
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.KindValidation, code, message, middleware.GetRequestID(c)))
}

// BindError reports a failed request bind
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError converts an error returned by a service into the response
// for its kind. Internal errors are logged with their cause and reported
// without it.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, info := dto.ErrorInfoFrom(err)
	info.RequestID = middleware.GetRequestID(c)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed", zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, dto.Response{Success: false, Error: info})
}

// actor returns the tenant and user resolved by the tenant middleware.
// It writes a 401 and returns false when no tenant is present.
func (h *BaseHandler) actor(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	tenantID, ok = middleware.GetTenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
			dto.KindUnauthorized, dto.ErrCodeTenantRequired, "Tenant context is required", middleware.GetRequestID(c)))
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, middleware.GetUserID(c), true
}

// pathID parses the named UUID path parameter, writing a 400 on failure
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidID, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// dateRange reads the inclusive from/to date parameters as a half-open
// interval [from, to+1d) in loc. Missing bounds default to the last 30
// days ending today.
func (h *BaseHandler) dateRange(c *gin.Context, loc *time.Location, now time.Time) (time.Time, time.Time, bool) {
	today := now.In(loc)
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			h.BadRequest(c, dto.ErrCodeBadRequest, "from must be a date (YYYY-MM-DD)")
			return time.Time{}, time.Time{}, false
		}
		from = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			h.BadRequest(c, dto.ErrCodeBadRequest, "to must be a date (YYYY-MM-DD)")
			return time.Time{}, time.Time{}, false
		}
		to = d.AddDate(0, 0, 1)
	}
	return from, to, true
}
