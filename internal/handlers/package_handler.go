package handlers

import (
	"fmt"
	"net/http"

	"encomendas_backend/internal/auth"
	"encomendas_backend/internal/middleware"
	"encomendas_backend/internal/services"
	"encomendas_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PackageHandler struct {
	*BaseHandler
	packageService services.PackageService
}

func NewPackageHandler(base *BaseHandler, packageService services.PackageService) *PackageHandler {
	return &PackageHandler{
		BaseHandler:    base,
		packageService: packageService,
	}
}

func (h *PackageHandler) RegisterRoutes(r *gin.RouterGroup) {
	packages := r.Group("/packages")
	{
		packages.GET("", middleware.RequirePermission(auth.PermPackagesRead), h.ListPackages)
		packages.GET("/stats", middleware.RequirePermission(auth.PermPackagesRead), h.GetStats)
		packages.GET("/report", middleware.RequirePermission(auth.PermPackagesExport), h.ExportReport)
		packages.GET("/:packageId", middleware.RequirePermission(auth.PermPackagesRead), h.GetPackage)

		packages.POST("", middleware.RequirePermission(auth.PermPackagesRegister), h.RegisterPackage)
		packages.POST("/:packageId/pickup", middleware.RequirePermission(auth.PermPackagesPickup), h.ConfirmPickup)
	}
}

// RegisterPackage godoc
// @Summary Registrar encomenda
// @Description Salva a foto, cria a encomenda e avisa o morador pelo WhatsApp
// @Tags packages
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Foto da encomenda"
// @Param resident_id formData string false "ID do morador"
// @Param carrier formData string false "Transportadora"
// @Param notes formData string false "Observações"
// @Param ocr_raw_text formData string false "Texto bruto da leitura"
// @Param ai_suggestion formData string false "JSON da sugestão da IA"
// @Param match_score formData int false "Pontuação do morador sugerido"
// @Success 201 {object} dto.RegisterPackageResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /packages [post]
func (h *PackageHandler) RegisterPackage(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RegisterPackageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	photo, ok := h.ReadImageFile(c, "photo")
	if !ok {
		return
	}

	resp, err := h.packageService.RegisterPackage(c.Request.Context(), h.GetDB(c), &dto.RegisterPackageInput{
		Request:        req,
		Photo:          photo,
		CondominiumID:  condominiumID,
		ReceivedBy:     userID,
		ReceivedByName: middleware.GetUserName(c),
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListPackages godoc
// @Summary Listar encomendas
// @Tags packages
// @Produce json
// @Param status query string false "pending ou picked_up"
// @Param resident_id query string false "ID do morador"
// @Param from query string false "Data inicial (YYYY-MM-DD)"
// @Param to query string false "Data final (YYYY-MM-DD)"
// @Param page query int false "Página"
// @Param page_size query int false "Itens por página"
// @Success 200 {object} dto.PackageListResponse
// @Security BearerAuth
// @Router /packages [get]
func (h *PackageHandler) ListPackages(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	var query dto.PackageListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	resp, err := h.packageService.ListPackages(c.Request.Context(), h.GetDB(c), condominiumID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPackage godoc
// @Summary Encomenda por ID
// @Tags packages
// @Produce json
// @Param packageId path string true "ID da encomenda"
// @Success 200 {object} dto.PackageResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /packages/{packageId} [get]
func (h *PackageHandler) GetPackage(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	resp, err := h.packageService.GetPackage(c.Request.Context(), h.GetDB(c), condominiumID, c.Param("packageId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmPickup godoc
// @Summary Confirmar retirada
// @Description Marca a encomenda como retirada com a assinatura do morador
// @Tags packages
// @Accept json
// @Produce json
// @Param packageId path string true "ID da encomenda"
// @Param pickup body dto.ConfirmPickupRequest true "Assinatura"
// @Success 200 {object} dto.ConfirmPickupResponse
// @Failure 409 {object} apperrors.ErrorResponse "Já retirada"
// @Security BearerAuth
// @Router /packages/{packageId}/pickup [post]
func (h *PackageHandler) ConfirmPickup(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	var req dto.ConfirmPickupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.packageService.ConfirmPickup(c.Request.Context(), h.GetDB(c), condominiumID, c.Param("packageId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStats godoc
// @Summary Resumo da portaria
// @Tags packages
// @Produce json
// @Success 200 {object} repositories.PackageStats
// @Security BearerAuth
// @Router /packages/stats [get]
func (h *PackageHandler) GetStats(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	stats, err := h.packageService.GetStats(c.Request.Context(), h.GetDB(c), condominiumID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportReport godoc
// @Summary Relatório de encomendas (xlsx)
// @Tags packages
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string true "Data inicial (YYYY-MM-DD)"
// @Param to query string true "Data final (YYYY-MM-DD)"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /packages/report [get]
func (h *PackageHandler) ExportReport(c *gin.Context) {
	condominiumID, ok := h.GetCondominiumID(c)
	if !ok {
		return
	}

	var query dto.ReportQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	data, err := h.packageService.ExportReport(c.Request.Context(), h.GetDB(c), condominiumID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	fileName := fmt.Sprintf("encomendas_%s_%s.xlsx", query.From, query.To)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}
