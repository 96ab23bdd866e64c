package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/domain"
	"atelier-backend/middleware"
)

type ProductHandler struct {
	usecase     domain.ProductUsecase
	middlewares middleware.Middlewares
}

func NewProductHandler(usecase domain.ProductUsecase, middlewares middleware.Middlewares) *ProductHandler {
	return &ProductHandler{
		usecase:     usecase,
		middlewares: middlewares,
	}
}

func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.Use(h.middlewares.Authenticator())
	products.Use(h.middlewares.APIRateLimits())

	products.GET("", h.List)
	products.GET("/:id", h.GetByID)
	products.POST("", h.middlewares.RequireStaff(), h.Create)
	products.PUT("/:id", h.middlewares.RequireStaff(), h.Update)
	products.DELETE("/:id", h.middlewares.RequireStaff(), h.Delete)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req domain.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	product, err := h.usecase.Create(c.Request.Context(), common.GetAuthContext(c), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseCreated(c, product, "Product created successfully")
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	product, err := h.usecase.FindByID(c.Request.Context(), common.GetAuthContext(c), c.Param("id"))
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, product, "Product retrieved successfully")
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := &domain.ProductFilter{}

	if sku := c.Query("sku"); sku != "" {
		filter.SKU = &sku
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if searchTerm := c.Query("search"); searchTerm != "" {
		filter.SearchTerm = &searchTerm
	}
	if priceGteStr := c.Query("price_gte"); priceGteStr != "" {
		if priceGte, err := strconv.ParseFloat(priceGteStr, 64); err == nil {
			filter.PriceGte = &priceGte
		}
	}
	if priceLteStr := c.Query("price_lte"); priceLteStr != "" {
		if priceLte, err := strconv.ParseFloat(priceLteStr, 64); err == nil {
			filter.PriceLte = &priceLte
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	option := &domain.FindPageOption{
		Page:    page,
		PerPage: perPage,
		Sort:    c.QueryArray("sort"),
	}

	products, pagination, err := h.usecase.FindPage(c.Request.Context(), common.GetAuthContext(c), filter, option)
	if err != nil {
		common.ResponseError(c, err)
		return
	}

	response := map[string]interface{}{
		"products":   products,
		"pagination": pagination,
	}
	common.ResponseOK(c, response, "Products retrieved successfully")
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req domain.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.usecase.Update(c.Request.Context(), common.GetAuthContext(c), c.Param("id"), &req); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Product updated successfully")
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), common.GetAuthContext(c), c.Param("id")); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Product deleted successfully")
}
