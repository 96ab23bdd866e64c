package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/domain"
	"atelier-backend/middleware"
)

type OrderHandler struct {
	usecase     domain.OrderUsecase
	middlewares middleware.Middlewares
}

func NewOrderHandler(usecase domain.OrderUsecase, middlewares middleware.Middlewares) *OrderHandler {
	return &OrderHandler{
		usecase:     usecase,
		middlewares: middlewares,
	}
}

func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")

	orders.Use(h.middlewares.Authenticator())
	orders.Use(h.middlewares.APIRateLimits())

	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.Update)
	orders.POST("/:id/transition", h.Transition)
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req domain.OrderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	order, err := h.usecase.Create(c.Request.Context(), common.GetAuthContext(c), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseCreated(c, order, "Order created successfully")
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	order, err := h.usecase.FindByID(c.Request.Context(), common.GetAuthContext(c), c.Param("id"))
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, order, "Order retrieved successfully")
}

func (h *OrderHandler) List(c *gin.Context) {
	filter := &domain.OrderFilter{}

	if customerID := c.Query("customer_id"); customerID != "" {
		filter.CustomerID = &customerID
	}
	if productID := c.Query("product_id"); productID != "" {
		filter.ProductID = &productID
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if searchTerm := c.Query("search"); searchTerm != "" {
		filter.SearchTerm = &searchTerm
	}
	if fromStr := c.Query("created_at_gte"); fromStr != "" {
		if from, err := strconv.ParseInt(fromStr, 10, 64); err == nil {
			filter.CreatedAtGte = &from
		}
	}
	if toStr := c.Query("created_at_lte"); toStr != "" {
		if to, err := strconv.ParseInt(toStr, 10, 64); err == nil {
			filter.CreatedAtLte = &to
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	option := &domain.FindPageOption{
		Page:    page,
		PerPage: perPage,
		Sort:    c.QueryArray("sort"),
	}

	orders, pagination, err := h.usecase.FindPage(c.Request.Context(), common.GetAuthContext(c), filter, option)
	if err != nil {
		common.ResponseError(c, err)
		return
	}

	response := map[string]interface{}{
		"orders":     orders,
		"pagination": pagination,
	}
	common.ResponseOK(c, response, "Orders retrieved successfully")
}

func (h *OrderHandler) Update(c *gin.Context) {
	var req domain.OrderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.usecase.Update(c.Request.Context(), common.GetAuthContext(c), c.Param("id"), &req); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Order updated successfully")
}

func (h *OrderHandler) Transition(c *gin.Context) {
	var req domain.OrderTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	order, err := h.usecase.Transition(c.Request.Context(), common.GetAuthContext(c), c.Param("id"), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, order, "Order status updated successfully")
}
