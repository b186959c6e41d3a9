package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"encomendas_backend/internal/storage"
	"encomendas_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// FileHandler отдает фото посылок из локального хранилища (для S3/R2 клиент получает подписанные ссылки)
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
	bucket  string
}

func NewFileHandler(base *BaseHandler, storage storage.Storage, bucket string) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
		bucket:      bucket,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.GET("/*path", h.ServeFile)
		files.HEAD("/*path", h.CheckFileExists)
	}
}

// ServeFile godoc
// @Summary Foto da encomenda
// @Tags files
// @Produce image/jpeg
// @Param path path string true "Caminho do arquivo"
// @Param download query bool false "Baixar como anexo"
// @Success 200 {file} file
// @Failure 404 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /files/{path} [get]
func (h *FileHandler) ServeFile(c *gin.Context) {
	objectPath, ok := h.authorizedPath(c)
	if !ok {
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), objectPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			apperrors.HandleError(c, apperrors.ErrNotFound(err))
			return
		}
		h.HandleServiceError(c, apperrors.ErrExternalService(err, "storage", "Failed to read file"))
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentTypeFor(objectPath))
	if size, err := h.storage.GetSize(c.Request.Context(), objectPath); err == nil {
		c.Header("Content-Length", strconv.FormatInt(size, 10))
	}
	c.Header("Cache-Control", "private, max-age=3600")

	if c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, path.Base(objectPath)))
	} else {
		c.Header("Content-Disposition", "inline")
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		c.Error(err)
	}
}

// CheckFileExists - HEAD
func (h *FileHandler) CheckFileExists(c *gin.Context) {
	objectPath, ok := h.authorizedPath(c)
	if !ok {
		return
	}

	exists, err := h.storage.Exists(c.Request.Context(), objectPath)
	if err != nil || !exists {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Content-Type", contentTypeFor(objectPath))
	c.Status(http.StatusOK)
}

// authorizedPath - файл должен лежать в папке кондоминиума пользователя
func (h *FileHandler) authorizedPath(c *gin.Context) (string, bool) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return "", false
	}

	objectPath := storage.ObjectPath(h.bucket, c.Param("path"))
	cleaned := strings.TrimPrefix(path.Clean("/"+objectPath), "/")
	if cleaned == "" || cleaned != objectPath {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid file path"))
		return "", false
	}
	if !strings.HasPrefix(cleaned, condominiumID+"/") {
		apperrors.HandleError(c, apperrors.NewForbiddenError("Access denied"))
		return "", false
	}
	return cleaned, true
}

func contentTypeFor(objectPath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(objectPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
