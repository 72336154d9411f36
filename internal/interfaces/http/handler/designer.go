package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	designerapp "github.com/fulluproar/backoffice/internal/application/designer"
	"github.com/fulluproar/backoffice/internal/domain/designer"
	"github.com/fulluproar/backoffice/internal/domain/shared"
	"github.com/fulluproar/backoffice/internal/infrastructure/fonts"
	"github.com/fulluproar/backoffice/internal/interfaces/http/dto"
	"github.com/fulluproar/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DesignerHandler serves the card designer API
type DesignerHandler struct {
	BaseHandler
	service    *designerapp.DesignerService
	fontGuards []gin.HandlerFunc
}

// NewDesignerHandler creates a new DesignerHandler
func NewDesignerHandler(service *designerapp.DesignerService) *DesignerHandler {
	return &DesignerHandler{service: service}
}

// WithFontLoadGuards installs middleware in front of the font load route,
// which triggers outbound fetches.
func (h *DesignerHandler) WithFontLoadGuards(guards ...gin.HandlerFunc) *DesignerHandler {
	h.fontGuards = append(h.fontGuards, guards...)
	return h
}

// RouteGroup declares the designer routes. renderGuards run in front of the
// export and preview routes only.
func (h *DesignerHandler) RouteGroup(renderGuards ...gin.HandlerFunc) *router.DomainGroup {
	render := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, renderGuards...), handler)
	}

	g := router.NewDomainGroup("designer", "/designer")
	g.GET("/dimensions", h.ListDimensions)
	g.GET("/fonts", h.ListFonts)
	g.POST("/fonts/load", append(append([]gin.HandlerFunc{}, h.fontGuards...), h.LoadFont)...)
	g.GET("/templates", h.ListTemplates)
	g.GET("/templates/:templateId", h.GetTemplate)
	g.POST("/sessions", h.CreateSession)

	s := g.Group("session", "/sessions/:id")
	s.GET("", h.GetSession)
	s.DELETE("", h.CloseSession)
	s.PUT("/dimension", h.ChangeDimension)
	s.POST("/elements/text", h.AddText)
	s.POST("/elements/image", h.AddImage)
	s.DELETE("/elements/:elementId", h.RemoveElement)
	s.PATCH("/elements/:elementId/style", h.UpdateElementStyle)
	s.POST("/elements/:elementId/reorder", h.Reorder)
	s.PUT("/background", h.SetBackground)
	s.DELETE("/background", h.ClearBackground)
	s.PUT("/selection", h.Select)
	s.DELETE("/selection", h.Deselect)
	s.PATCH("/selection/style", h.ApplySelectionStyle)
	s.GET("/layers", h.Layers)
	s.POST("/export/raster", render(h.ExportRaster)...)
	s.POST("/export/pdf", render(h.ExportPDF)...)
	s.GET("/export/scene", h.ExportScene)
	s.GET("/preview", render(h.Preview)...)
	s.POST("/templates", h.SaveTemplate)
	s.POST("/templates/:templateId/load", h.LoadTemplate)
	return g
}

type templateURI struct {
	TemplateID string `uri:"templateId" binding:"required,uuid"`
}

type sessionTemplateURI struct {
	ID         string `uri:"id" binding:"required,uuid"`
	TemplateID string `uri:"templateId" binding:"required,uuid"`
}

type imageURLRequest struct {
	URL string `json:"url" binding:"required,image_url"`
}

type rasterExportQuery struct {
	Multiplier float64 `form:"multiplier"`
}

type sceneExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=json yaml"`
}

type templateListQuery struct {
	dto.ListRequest
	Dimension string `form:"dimension" binding:"omitempty,dimension_preset"`
}

// sessionID binds the :id path parameter
func (h *DesignerHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}

// imageInput reads an uploaded file from a multipart "file" field, or a
// JSON {url} body for remote images
func (h *DesignerHandler) imageInput(c *gin.Context) (designerapp.ImageInput, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.BindError(c, err)
				return designerapp.ImageInput{}, false
			}
			h.HandleError(c, shared.ErrInvalidInput.WithMessage("multipart field \"file\" is required"))
			return designerapp.ImageInput{}, false
		}
		f, err := fh.Open()
		if err != nil {
			h.HandleError(c, err)
			return designerapp.ImageInput{}, false
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			h.HandleError(c, err)
			return designerapp.ImageInput{}, false
		}
		return designerapp.ImageInput{Data: data, FileName: fh.Filename}, true
	}

	var req imageURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return designerapp.ImageInput{}, false
	}
	return designerapp.ImageInput{URL: req.URL}, true
}

// artifact writes an export body with its download headers
func (h *DesignerHandler) artifact(c *gin.Context, id uuid.UUID, result *designerapp.ExportResult, disposition string) {
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="card-%s.%s"`,
		disposition, id, result.Format.Extension()))
	if result.AssetKey != "" {
		c.Header("X-Asset-Key", result.AssetKey)
	}
	if result.DownloadURL != "" {
		c.Header("X-Download-URL", result.DownloadURL)
	}
	if result.Width > 0 {
		c.Header("X-Export-Width", fmt.Sprint(result.Width))
		c.Header("X-Export-Height", fmt.Sprint(result.Height))
	}
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// ListDimensions godoc
// @Summary      List card dimensions
// @Tags         designer
// @Produce      json
// @Success      200 {object} APIResponse[[]designerapp.DimensionResponse]
// @Router       /designer/dimensions [get]
func (h *DesignerHandler) ListDimensions(c *gin.Context) {
	h.Success(c, h.service.Dimensions())
}

// ListFonts godoc
// @Summary      List font families and their load status
// @Tags         designer
// @Produce      json
// @Success      200 {object} APIResponse[[]designerapp.FontFamilyResponse]
// @Router       /designer/fonts [get]
func (h *DesignerHandler) ListFonts(c *gin.Context) {
	h.Success(c, h.service.Fonts())
}

// LoadFont godoc
// @Summary      Request a font family
// @Description  Starts loading a family. Answers 202 while the load is in flight.
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        request body designerapp.LoadFontRequest true "Font family"
// @Success      200 {object} APIResponse[designerapp.FontFamilyResponse]
// @Success      202 {object} APIResponse[designerapp.FontFamilyResponse]
// @Router       /designer/fonts/load [post]
func (h *DesignerHandler) LoadFont(c *gin.Context) {
	var req designerapp.LoadFontRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.LoadFont(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Status == string(fonts.StatusLoading) {
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(resp))
		return
	}
	h.Success(c, resp)
}

// CreateSession godoc
// @Summary      Open an editing session
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        request body designerapp.CreateSessionRequest false "Dimension preset"
// @Success      201 {object} APIResponse[designerapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /designer/sessions [post]
func (h *DesignerHandler) CreateSession(c *gin.Context) {
	var req designerapp.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	resp, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetSession godoc
// @Summary      Get a session with its document
// @Tags         designer
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[designerapp.SessionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /designer/sessions/{id} [get]
func (h *DesignerHandler) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	resp, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CloseSession godoc
// @Summary      Close a session
// @Tags         designer
// @Param        id path string true "Session ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /designer/sessions/{id} [delete]
func (h *DesignerHandler) CloseSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.service.CloseSession(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangeDimension godoc
// @Summary      Switch the card size
// @Description  Reinitializes the document; the response reports how many elements were discarded.
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body designerapp.ChangeDimensionRequest true "Dimension preset"
// @Success      200 {object} APIResponse[designerapp.DimensionChangeResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /designer/sessions/{id}/dimension [put]
func (h *DesignerHandler) ChangeDimension(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req designerapp.ChangeDimensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.ChangeDimension(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddText godoc
// @Summary      Add a text or text box element
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body designerapp.AddTextRequest true "Text element"
// @Success      201 {object} APIResponse[designerapp.ElementResponse]
// @Router       /designer/sessions/{id}/elements/text [post]
func (h *DesignerHandler) AddText(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req designerapp.AddTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.AddText(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// AddImage godoc
// @Summary      Add an image element
// @Description  Accepts a multipart "file" upload or a JSON body {"url": "..."}.
// @Tags         designer
// @Accept       multipart/form-data,json
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      201 {object} APIResponse[designerapp.ElementResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /designer/sessions/{id}/elements/image [post]
func (h *DesignerHandler) AddImage(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	in, ok := h.imageInput(c)
	if !ok {
		return
	}
	resp, err := h.service.AddImage(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RemoveElement godoc
// @Summary      Remove an element
// @Tags         designer
// @Param        id path string true "Session ID"
// @Param        elementId path string true "Element ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /designer/sessions/{id}/elements/{elementId} [delete]
func (h *DesignerHandler) RemoveElement(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveElement(c.Request.Context(), id, c.Param("elementId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateElementStyle godoc
// @Summary      Set one style property of an element
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        elementId path string true "Element ID"
// @Param        request body designerapp.StyleRequest true "Property and value"
// @Success      200 {object} APIResponse[designerapp.ElementResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /designer/sessions/{id}/elements/{elementId}/style [patch]
func (h *DesignerHandler) UpdateElementStyle(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req designerapp.StyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.UpdateElementStyle(c.Request.Context(), id, c.Param("elementId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reorder godoc
// @Summary      Move an element one step in paint order
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        elementId path string true "Element ID"
// @Param        request body designerapp.ReorderRequest true "Direction"
// @Success      200 {object} APIResponse[designerapp.ReorderResponse]
// @Router       /designer/sessions/{id}/elements/{elementId}/reorder [post]
func (h *DesignerHandler) Reorder(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req designerapp.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.Reorder(c.Request.Context(), id, c.Param("elementId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetBackground godoc
// @Summary      Set the background image
// @Description  Accepts a multipart "file" upload or a JSON body {"url": "..."}; the image covers the card.
// @Tags         designer
// @Accept       multipart/form-data,json
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[designerapp.BackgroundResponse]
// @Router       /designer/sessions/{id}/background [put]
func (h *DesignerHandler) SetBackground(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	in, ok := h.imageInput(c)
	if !ok {
		return
	}
	resp, err := h.service.SetBackground(c.Request.Context(), id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClearBackground godoc
// @Summary      Remove the background image
// @Tags         designer
// @Param        id path string true "Session ID"
// @Success      204
// @Router       /designer/sessions/{id}/background [delete]
func (h *DesignerHandler) ClearBackground(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.service.ClearBackground(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Select godoc
// @Summary      Select an element
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body designerapp.SelectRequest true "Element"
// @Success      200 {object} APIResponse[designerapp.SelectionResponse]
// @Router       /designer/sessions/{id}/selection [put]
func (h *DesignerHandler) Select(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req designerapp.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.Select(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deselect godoc
// @Summary      Clear the selection
// @Tags         designer
// @Param        id path string true "Session ID"
// @Success      204
// @Router       /designer/sessions/{id}/selection [delete]
func (h *DesignerHandler) Deselect(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.service.Deselect(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ApplySelectionStyle godoc
// @Summary      Set one style property of the selected element
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body designerapp.StyleRequest true "Property and value"
// @Success      200 {object} APIResponse[designerapp.SelectionResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /designer/sessions/{id}/selection/style [patch]
func (h *DesignerHandler) ApplySelectionStyle(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req designerapp.StyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.ApplySelectionStyle(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Layers godoc
// @Summary      List layers in paint order, bottom first
// @Tags         designer
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[designerapp.LayersResponse]
// @Router       /designer/sessions/{id}/layers [get]
func (h *DesignerHandler) Layers(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	resp, err := h.service.Layers(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ExportRaster godoc
// @Summary      Export the card as PNG
// @Tags         designer
// @Produce      png
// @Param        id path string true "Session ID"
// @Param        multiplier query number false "Scale over reference size"
// @Success      200 {file} binary
// @Failure      422 {object} ErrorResponse
// @Router       /designer/sessions/{id}/export/raster [post]
func (h *DesignerHandler) ExportRaster(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var q rasterExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.service.ExportRaster(c.Request.Context(), id, q.Multiplier)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.artifact(c, id, result, "attachment")
}

// ExportPDF godoc
// @Summary      Export the card as a one-page PDF
// @Tags         designer
// @Produce      application/pdf
// @Param        id path string true "Session ID"
// @Param        multiplier query number false "Scale over reference size"
// @Success      200 {file} binary
// @Failure      501 {object} ErrorResponse
// @Router       /designer/sessions/{id}/export/pdf [post]
func (h *DesignerHandler) ExportPDF(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var q rasterExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.service.ExportPDF(c.Request.Context(), id, q.Multiplier)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.artifact(c, id, result, "attachment")
}

// ExportScene godoc
// @Summary      Dump the scene as JSON or YAML
// @Tags         designer
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        format query string false "json or yaml"
// @Success      200 {file} binary
// @Router       /designer/sessions/{id}/export/scene [get]
func (h *DesignerHandler) ExportScene(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var q sceneExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	format := designer.ExportFormatSceneJSON
	if q.Format == "yaml" {
		format = designer.ExportFormatSceneYAML
	}
	result, err := h.service.ExportScene(c.Request.Context(), id, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.artifact(c, id, result, "inline")
}

// Preview godoc
// @Summary      Render the editor view with guides
// @Tags         designer
// @Produce      png
// @Param        id path string true "Session ID"
// @Success      200 {file} binary
// @Router       /designer/sessions/{id}/preview [get]
func (h *DesignerHandler) Preview(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	result, err := h.service.Preview(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	h.artifact(c, id, result, "inline")
}

// SaveTemplate godoc
// @Summary      Save the session as a new template
// @Tags         designer
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body designerapp.SaveTemplateRequest true "Template name"
// @Success      201 {object} APIResponse[designerapp.TemplateSummary]
// @Router       /designer/sessions/{id}/templates [post]
func (h *DesignerHandler) SaveTemplate(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req designerapp.SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.SaveTemplate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// LoadTemplate godoc
// @Summary      Replace the session content with a template
// @Tags         designer
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        templateId path string true "Template ID"
// @Success      200 {object} APIResponse[designerapp.SessionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /designer/sessions/{id}/templates/{templateId}/load [post]
func (h *DesignerHandler) LoadTemplate(c *gin.Context) {
	var uri sessionTemplateURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.LoadTemplate(c.Request.Context(), uuid.MustParse(uri.ID), uuid.MustParse(uri.TemplateID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListTemplates godoc
// @Summary      List saved templates, oldest first
// @Tags         designer
// @Produce      json
// @Param        dimension query string false "Dimension preset filter"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]designerapp.TemplateSummary]
// @Router       /designer/templates [get]
func (h *DesignerHandler) ListTemplates(c *gin.Context) {
	q := templateListQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	templates, total, err := h.service.ListTemplates(c.Request.Context(), designerapp.TemplateListFilter{
		Dimension: q.Dimension,
		Page:      q.Page,
		PageSize:  q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, templates, total, q.Page, q.PageSize)
}

// GetTemplate godoc
// @Summary      Get a template with its scene snapshot
// @Tags         designer
// @Produce      json
// @Param        templateId path string true "Template ID"
// @Success      200 {object} APIResponse[designerapp.TemplateResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /designer/templates/{templateId} [get]
func (h *DesignerHandler) GetTemplate(c *gin.Context) {
	var uri templateURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.service.GetTemplate(c.Request.Context(), uuid.MustParse(uri.TemplateID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
