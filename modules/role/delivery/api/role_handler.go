package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/domain"
	"atelier-backend/middleware"
)

type RoleHandler struct {
	usecase     domain.RoleUsecase
	middlewares middleware.Middlewares
}

func NewRoleHandler(usecase domain.RoleUsecase, middlewares middleware.Middlewares) *RoleHandler {
	return &RoleHandler{
		usecase:     usecase,
		middlewares: middlewares,
	}
}

func (h *RoleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	roles := rg.Group("/roles")

	roles.Use(h.middlewares.Authenticator())
	roles.Use(h.middlewares.RequireStaff())
	roles.Use(h.middlewares.AdminRateLimits())

	roles.POST("", h.Create)
	roles.GET("", h.List)
	roles.GET("/:id", h.GetByID)
	roles.PUT("/:id", h.Update)
	roles.DELETE("/:id", h.Delete)
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req domain.RoleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	role, err := h.usecase.Create(c.Request.Context(), common.GetAuthContext(c), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseCreated(c, role, "Role created successfully")
}

func (h *RoleHandler) GetByID(c *gin.Context) {
	role, err := h.usecase.FindByID(c.Request.Context(), common.GetAuthContext(c), c.Param("id"))
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, role, "Role retrieved successfully")
}

func (h *RoleHandler) List(c *gin.Context) {
	filter := &domain.RoleFilter{}

	if name := c.Query("name"); name != "" {
		filter.Name = &name
	}
	if builtInStr := c.Query("is_built_in"); builtInStr != "" {
		if builtIn, err := strconv.ParseBool(builtInStr); err == nil {
			filter.IsBuiltIn = &builtIn
		}
	}
	if searchTerm := c.Query("search"); searchTerm != "" {
		filter.SearchTerm = &searchTerm
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	option := &domain.FindPageOption{
		Page:    page,
		PerPage: perPage,
		Sort:    c.QueryArray("sort"),
	}

	roles, pagination, err := h.usecase.FindPage(c.Request.Context(), common.GetAuthContext(c), filter, option)
	if err != nil {
		common.ResponseError(c, err)
		return
	}

	response := map[string]interface{}{
		"roles":      roles,
		"pagination": pagination,
	}
	common.ResponseOK(c, response, "Roles retrieved successfully")
}

func (h *RoleHandler) Update(c *gin.Context) {
	var req domain.RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.usecase.Update(c.Request.Context(), common.GetAuthContext(c), c.Param("id"), &req); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Role updated successfully")
}

func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), common.GetAuthContext(c), c.Param("id")); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Role deleted successfully")
}
