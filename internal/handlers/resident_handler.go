package handlers

import (
	"net/http"

	"encomendas_backend/internal/auth"
	"encomendas_backend/internal/middleware"
	"encomendas_backend/internal/services"
	"encomendas_backend/internal/services/dto"
	"encomendas_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ResidentHandler struct {
	*BaseHandler
	residentService services.ResidentService
}

func NewResidentHandler(base *BaseHandler, residentService services.ResidentService) *ResidentHandler {
	return &ResidentHandler{
		BaseHandler:     base,
		residentService: residentService,
	}
}

// RegisterRoutes - r уже под AuthMiddleware
func (h *ResidentHandler) RegisterRoutes(r *gin.RouterGroup) {
	residents := r.Group("/residents")
	{
		residents.GET("", middleware.RequirePermission(auth.PermResidentsRead), h.ListResidents)
		residents.GET("/:residentId", middleware.RequirePermission(auth.PermResidentsRead), h.GetResident)

		write := residents.Group("", middleware.RequirePermission(auth.PermResidentsWrite))
		write.POST("", h.CreateResident)
		write.POST("/import", h.ImportResidents)
		write.PUT("/:residentId", h.UpdateResident)
		write.DELETE("/:residentId", h.DeactivateResident)
	}
}

// CreateResident godoc
// @Summary Cadastrar morador
// @Tags residents
// @Accept json
// @Produce json
// @Param resident body dto.CreateResidentRequest true "Morador"
// @Success 201 {object} models.Resident
// @Failure 400 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /residents [post]
func (h *ResidentHandler) CreateResident(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	var req dto.CreateResidentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resident, err := h.residentService.CreateResident(c.Request.Context(), h.GetDB(c), condominiumID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resident)
}

// ListResidents godoc
// @Summary Listar moradores
// @Tags residents
// @Produce json
// @Param search query string false "Nome, bloco ou apartamento"
// @Param block query string false "Bloco"
// @Param include_inactive query bool false "Incluir inativos"
// @Param page query int false "Página"
// @Param page_size query int false "Itens por página"
// @Success 200 {object} dto.ResidentListResponse
// @Security BearerAuth
// @Router /residents [get]
func (h *ResidentHandler) ListResidents(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	var query dto.ResidentListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	resp, err := h.residentService.ListResidents(c.Request.Context(), h.GetDB(c), condominiumID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetResident godoc
// @Summary Morador por ID
// @Tags residents
// @Produce json
// @Param residentId path string true "ID do morador"
// @Success 200 {object} models.Resident
// @Failure 404 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /residents/{residentId} [get]
func (h *ResidentHandler) GetResident(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	resident, err := h.residentService.GetResident(c.Request.Context(), h.GetDB(c), condominiumID, c.Param("residentId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resident)
}

// UpdateResident godoc
// @Summary Atualizar morador
// @Tags residents
// @Accept json
// @Produce json
// @Param residentId path string true "ID do morador"
// @Param resident body dto.UpdateResidentRequest true "Campos alterados"
// @Success 200 {object} models.Resident
// @Security BearerAuth
// @Router /residents/{residentId} [put]
func (h *ResidentHandler) UpdateResident(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	var req dto.UpdateResidentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resident, err := h.residentService.UpdateResident(c.Request.Context(), h.GetDB(c), condominiumID, c.Param("residentId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resident)
}

// DeactivateResident godoc
// @Summary Desativar morador
// @Tags residents
// @Param residentId path string true "ID do morador"
// @Success 204
// @Security BearerAuth
// @Router /residents/{residentId} [delete]
func (h *ResidentHandler) DeactivateResident(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	if err := h.residentService.DeactivateResident(c.Request.Context(), h.GetDB(c), condominiumID, c.Param("residentId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ImportResidents godoc
// @Summary Importar moradores de planilha xlsx
// @Description Colunas: nome, telefone, bloco, apartamento
// @Tags residents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Planilha .xlsx"
// @Success 200 {object} dto.ImportResult
// @Security BearerAuth
// @Router /residents/import [post]
func (h *ResidentHandler) ImportResidents(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("no file provided"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to open uploaded file"))
		return
	}
	defer file.Close()

	result, err := h.residentService.ImportResidents(c.Request.Context(), h.GetDB(c), condominiumID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
