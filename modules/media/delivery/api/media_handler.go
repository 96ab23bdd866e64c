package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/domain"
	"atelier-backend/middleware"
)

type MediaHandler struct {
	usecase     domain.MediaUsecase
	middlewares middleware.Middlewares
}

func NewMediaHandler(usecase domain.MediaUsecase, middlewares middleware.Middlewares) *MediaHandler {
	return &MediaHandler{
		usecase:     usecase,
		middlewares: middlewares,
	}
}

func (h *MediaHandler) RegisterRoutes(rg *gin.RouterGroup) {
	media := rg.Group("/media")

	media.Use(h.middlewares.Authenticator())
	media.Use(h.middlewares.APIRateLimits())

	media.POST("/upload", h.Upload)
	media.GET("", h.List)
	media.GET("/:id", h.GetByID)
	media.POST("/attach", h.middlewares.RequireStaff(), h.Attach)
	media.DELETE("/:id", h.middlewares.RequireStaff(), h.Delete)
}

func (h *MediaHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.ResponseError(c, domain.ErrUploadInvalidContentType.WithWrap(err))
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		common.ResponseError(c, domain.ErrUploadFilesRequired)
		return
	}

	fileWithContents, err := domain.NewFileWithContents(fileHeaders)
	if err != nil {
		common.ResponseError(c, domain.ErrUploadFilesFailed.WithWrap(err))
		return
	}

	req := &domain.UploadRequest{
		Files:      fileWithContents,
		CustomerID: c.PostForm("customer_id"),
	}

	files, err := h.usecase.Upload(c.Request.Context(), common.GetAuthContext(c), req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseCreated(c, files, "Files uploaded successfully")
}

func (h *MediaHandler) GetByID(c *gin.Context) {
	file, err := h.usecase.FindByID(c.Request.Context(), common.GetAuthContext(c), c.Param("id"))
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, file, "File retrieved successfully")
}

func (h *MediaHandler) List(c *gin.Context) {
	filter := &domain.FileFilter{}

	if ext := c.Query("ext"); ext != "" {
		filter.Ext = &ext
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		filter.CustomerID = &customerID
	}
	if uploadedBy := c.Query("uploaded_by"); uploadedBy != "" {
		filter.UploadedBy = &uploadedBy
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	option := &domain.FindPageOption{
		Page:    page,
		PerPage: perPage,
		Sort:    c.QueryArray("sort"),
	}

	files, pagination, err := h.usecase.FindPage(c.Request.Context(), common.GetAuthContext(c), filter, option)
	if err != nil {
		common.ResponseError(c, err)
		return
	}

	response := map[string]interface{}{
		"files":      files,
		"pagination": pagination,
	}
	common.ResponseOK(c, response, "Files retrieved successfully")
}

func (h *MediaHandler) Attach(c *gin.Context) {
	var req domain.AttachFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.usecase.Attach(c.Request.Context(), common.GetAuthContext(c), &req); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Files attached successfully")
}

func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), common.GetAuthContext(c), c.Param("id")); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "File deleted successfully")
}
