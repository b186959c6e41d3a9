package apperrors

import (
	"encomendas_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

// debugErrors включается в development (см. app.Run)
var debugErrors = true

// SetDebug переключает вывод деталей внутренних ошибок клиенту
func SetDebug(debug bool) {
	debugErrors = debug
}

// HandleGinError - основная логика обработки ошибок для Gin
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}
	if appErr.HTTPCode >= 500 && !h.Debug {
		// В продакшене скрываем детали
		appErr = appErr.WithDetails(nil)
	}

	if appErr.HTTPCode >= 500 {
		logger.CtxError(c.Request.Context(), "server error",
			"code", appErr.Code,
			"domain", appErr.Domain,
			"cause", errString(appErr.Unwrap()),
		)
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

// HandleError - быстрая функция-помощник для Gin
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: debugErrors}
	handler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
