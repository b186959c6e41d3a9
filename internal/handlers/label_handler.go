package handlers

import (
	"bytes"
	"net/http"

	"encomendas_backend/internal/auth"
	"encomendas_backend/internal/middleware"
	"encomendas_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type LabelHandler struct {
	*BaseHandler
	labelService services.LabelService
}

func NewLabelHandler(base *BaseHandler, labelService services.LabelService) *LabelHandler {
	return &LabelHandler{
		BaseHandler:  base,
		labelService: labelService,
	}
}

func (h *LabelHandler) RegisterRoutes(r *gin.RouterGroup) {
	labels := r.Group("/labels", middleware.RequirePermission(auth.PermPackagesRegister))
	{
		labels.POST("/read", h.ReadLabel)
	}
}

// ReadLabel godoc
// @Summary Ler etiqueta e sugerir morador
// @Description Envia a foto da etiqueta para o leitor de IA e procura o morador mais provável
// @Tags labels
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Foto da etiqueta"
// @Param trace query bool false "Incluir pontuação de todos os moradores"
// @Success 200 {object} dto.ReadLabelResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 402 {object} apperrors.ErrorResponse "Créditos de IA esgotados"
// @Failure 429 {object} apperrors.ErrorResponse "Limite de requisições"
// @Security BearerAuth
// @Router /labels/read [post]
func (h *LabelHandler) ReadLabel(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	photo, ok := h.ReadImageFile(c, "photo")
	if !ok {
		return
	}

	resp, err := h.labelService.ReadLabel(c.Request.Context(), h.GetDB(c), condominiumID, bytes.NewReader(photo), ParseQueryBool(c, "trace"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
