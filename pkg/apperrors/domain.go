package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные ошибки домена "encomendas".
Репозитории возвращают sentinel-ошибки, сервисы оборачивают их сюда.
*/

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrExternalService - внешний сервис (AI, Twilio, хранилище) ответил ошибкой (502)
func ErrExternalService(err error, domain, message string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, message, http.StatusBadGateway)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Жильцы и кондоминиумы ---

var ErrResidentNotFound = New(CodeNotFound, "resident", "Resident not found", http.StatusNotFound)

var ErrCondominiumNotFound = New(CodeNotFound, "condominium", "Condominium not found", http.StatusNotFound)

var ErrCondominiumRequired = New(CodeForbidden, "condominium", "No condominium selected for this user", http.StatusForbidden)

// --- Посылки ---

var ErrPackageNotFound = New(CodeNotFound, "package", "Package not found", http.StatusNotFound)

var ErrPackageAlreadyPickedUp = New(CodeInvalidStatus, "package", "Package was already picked up", http.StatusConflict)

var ErrSignatureRequired = New(CodeValidationFailed, "package", "Signature is required to confirm pickup", http.StatusBadRequest)

// --- Фото ---

var ErrImageInvalid = New(CodeInvalidImage, "image", "File is not a valid image", http.StatusBadRequest)

var ErrImageTooLarge = New(CodeInvalidImage, "image", "Image exceeds the maximum upload size", http.StatusRequestEntityTooLarge)

// --- Чтение этикетки (AI) ---

var ErrAIRateLimited = New(CodeRateLimited, "label", "Rate limit exceeded, try again later", http.StatusTooManyRequests)

var ErrAICreditsExhausted = New(CodeCreditsExhausted, "label", "AI credits exhausted", http.StatusPaymentRequired)

var ErrLabelUnreadable = New(CodeLabelUnreadable, "label", "Label could not be read, select the resident manually", http.StatusUnprocessableEntity)

// --- WhatsApp ---

var ErrPhoneRequired = New(CodeValidationFailed, "messaging", "Phone number is required", http.StatusBadRequest)

var ErrMessagingUnavailable = New(CodeMessagingFailed, "messaging", "Twilio credentials not configured", http.StatusServiceUnavailable)

// --- Auth ---

var ErrInsufficientPermissions = New(CodeForbidden, "auth", "Insufficient permissions", http.StatusForbidden)
