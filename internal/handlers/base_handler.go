package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/middleware"
	"encomendas_backend/internal/validator"
	"encomendas_backend/pkg/apperrors"
	"encomendas_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

// UploadLimits - ограничения на фото, которые присылает портария
type UploadLimits struct {
	MaxSize      int64
	AllowedTypes []string
}

type BaseHandler struct {
	validator *validator.Validator
	uploads   UploadLimits
}

func NewBaseHandler(v *validator.Validator, uploads UploadLimits) *BaseHandler {
	if uploads.MaxSize <= 0 {
		uploads.MaxSize = 15 << 20
	}
	return &BaseHandler{
		validator: v,
		uploads:   uploads,
	}
}

// ============================================================================
// 2. DB из контекста
// ============================================================================

// GetDB извлекает *gorm.DB из gin.Context (кладет DBMiddleware)
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// ============================================================================
// 3. Привязка и валидация
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBind(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters: "+err.Error()))
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// ============================================================================
// 4. Ошибки сервисов
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// ============================================================================
// 5. Пользователь и кондоминиум из токена
// ============================================================================

func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: userID not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return "", false
	}
	return userID, true
}

// GetCondominiumID - все данные портарии изолированы по кондоминиуму из токена
func (h *BaseHandler) GetCondominiumID(c *gin.Context) (string, bool) {
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == "" {
		apperrors.HandleError(c, apperrors.ErrCondominiumRequired)
		return "", false
	}
	return condominiumID, true
}

// ReadImageFile читает файл из multipart формы с проверкой размера и типа
func (h *BaseHandler) ReadImageFile(c *gin.Context, field string) ([]byte, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("no file provided in field '"+field+"'"))
		return nil, false
	}
	if fileHeader.Size > h.uploads.MaxSize {
		apperrors.HandleError(c, apperrors.ErrImageTooLarge)
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to open uploaded file"))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.uploads.MaxSize+1))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read uploaded file"))
		return nil, false
	}
	if int64(len(data)) > h.uploads.MaxSize {
		apperrors.HandleError(c, apperrors.ErrImageTooLarge)
		return nil, false
	}

	if !h.allowedType(http.DetectContentType(data)) {
		apperrors.HandleError(c, apperrors.ErrImageInvalid)
		return nil, false
	}
	return data, true
}

func (h *BaseHandler) allowedType(contentType string) bool {
	if len(h.uploads.AllowedTypes) == 0 {
		return true
	}
	for _, t := range h.uploads.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// ============================================================================
// 6. Парсинг
// ============================================================================

func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
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

func ParseQueryBool(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(c.Query(key))
	return err == nil && value
}
