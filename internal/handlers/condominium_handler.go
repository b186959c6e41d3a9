package handlers

import (
	"net/http"

	"encomendas_backend/internal/auth"
	"encomendas_backend/internal/middleware"
	"encomendas_backend/internal/services"
	"encomendas_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CondominiumHandler struct {
	*BaseHandler
	condominiumService services.CondominiumService
}

func NewCondominiumHandler(base *BaseHandler, condominiumService services.CondominiumService) *CondominiumHandler {
	return &CondominiumHandler{
		BaseHandler:        base,
		condominiumService: condominiumService,
	}
}

func (h *CondominiumHandler) RegisterRoutes(r *gin.RouterGroup) {
	condominium := r.Group("/condominium")
	{
		condominium.GET("", h.GetCondominium)
		condominium.PUT("/labels", middleware.RequirePermission(auth.PermCondominiumWrite), h.UpdateLabels)
	}
}

// GetCondominium godoc
// @Summary Condomínio do usuário
// @Description Nome e rótulos de bloco/apartamento
// @Tags condominium
// @Produce json
// @Success 200 {object} dto.CondominiumResponse
// @Security BearerAuth
// @Router /condominium [get]
func (h *CondominiumHandler) GetCondominium(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	resp, err := h.condominiumService.GetCondominium(c.Request.Context(), h.GetDB(c), condominiumID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateLabels godoc
// @Summary Alterar rótulos de bloco/apartamento
// @Tags condominium
// @Accept json
// @Produce json
// @Param labels body dto.UpdateLabelsRequest true "Rótulos"
// @Success 200 {object} dto.CondominiumResponse
// @Security BearerAuth
// @Router /condominium/labels [put]
func (h *CondominiumHandler) UpdateLabels(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	var req dto.UpdateLabelsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.condominiumService.UpdateLabels(c.Request.Context(), h.GetDB(c), condominiumID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
