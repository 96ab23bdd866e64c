package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/domain"
	"atelier-backend/middleware"
)

type CustomerHandler struct {
	usecase     domain.CustomerUsecase
	middlewares middleware.Middlewares
}

func NewCustomerHandler(usecase domain.CustomerUsecase, middlewares middleware.Middlewares) *CustomerHandler {
	return &CustomerHandler{
		usecase:     usecase,
		middlewares: middlewares,
	}
}

func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")

	customers.Use(h.middlewares.Authenticator())
	customers.Use(h.middlewares.APIRateLimits())

	customers.POST("", h.Create)
	customers.GET("", h.List)
	customers.GET("/:id", h.GetByID)
	customers.PUT("/:id", h.Update)
	customers.PUT("/password", h.ChangePassword)
	customers.DELETE("/:id", h.Delete)
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req domain.CustomerCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	customer, err := h.usecase.Create(c.Request.Context(), common.GetAuthContext(c), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseCreated(c, customer, "Customer created successfully")
}

func (h *CustomerHandler) GetByID(c *gin.Context) {
	customer, err := h.usecase.FindByID(c.Request.Context(), common.GetAuthContext(c), c.Param("id"))
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, customer, "Customer retrieved successfully")
}

func (h *CustomerHandler) List(c *gin.Context) {
	filter := &domain.CustomerFilter{}

	if email := c.Query("email"); email != "" {
		filter.Email = &email
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
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

	customers, pagination, err := h.usecase.FindPage(c.Request.Context(), common.GetAuthContext(c), filter, option)
	if err != nil {
		common.ResponseError(c, err)
		return
	}

	response := map[string]interface{}{
		"customers":  customers,
		"pagination": pagination,
	}
	common.ResponseOK(c, response, "Customers retrieved successfully")
}

func (h *CustomerHandler) Update(c *gin.Context) {
	var req domain.CustomerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.usecase.Update(c.Request.Context(), common.GetAuthContext(c), c.Param("id"), &req); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Customer updated successfully")
}

func (h *CustomerHandler) ChangePassword(c *gin.Context) {
	var req domain.CustomerChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.usecase.ChangePassword(c.Request.Context(), common.GetAuthContext(c), &req); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Password changed successfully")
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), common.GetAuthContext(c), c.Param("id")); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Customer deleted successfully")
}
