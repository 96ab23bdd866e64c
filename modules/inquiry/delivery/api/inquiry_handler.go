package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"atelier-backend/common"
	"atelier-backend/domain"
	"atelier-backend/middleware"
)

type InquiryHandler struct {
	usecase     domain.InquiryUsecase
	middlewares middleware.Middlewares
}

func NewInquiryHandler(usecase domain.InquiryUsecase, middlewares middleware.Middlewares) *InquiryHandler {
	return &InquiryHandler{
		usecase:     usecase,
		middlewares: middlewares,
	}
}

func (h *InquiryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inquiries := rg.Group("/inquiries")
	inquiries.Use(h.middlewares.APIRateLimits())

	// Anonymous submissions are accepted, visitors do not need an account
	inquiries.POST("", h.middlewares.OptionalAuthenticator(), h.Create)

	protected := inquiries.Group("")
	protected.Use(h.middlewares.Authenticator())
	{
		protected.GET("", h.List)
		protected.GET("/:id", h.GetByID)
		protected.PUT("/:id", h.Update)
		protected.POST("/:id/transition", h.Transition)
		protected.DELETE("/:id", h.Delete)
	}
}

func (h *InquiryHandler) Create(c *gin.Context) {
	var req domain.InquiryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	inquiry, err := h.usecase.Create(c.Request.Context(), common.GetAuthContext(c), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseCreated(c, inquiry, "Inquiry submitted successfully")
}

func (h *InquiryHandler) GetByID(c *gin.Context) {
	inquiry, err := h.usecase.FindByID(c.Request.Context(), common.GetAuthContext(c), c.Param("id"))
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, inquiry, "Inquiry retrieved successfully")
}

func (h *InquiryHandler) List(c *gin.Context) {
	filter := &domain.InquiryFilter{}

	if customerID := c.Query("customer_id"); customerID != "" {
		filter.CustomerID = &customerID
	}
	if assigneeID := c.Query("assignee_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := domain.InquiryStatus(statusInt)
			filter.Status = &status
		}
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

	inquiries, pagination, err := h.usecase.FindPage(c.Request.Context(), common.GetAuthContext(c), filter, option)
	if err != nil {
		common.ResponseError(c, err)
		return
	}

	response := map[string]interface{}{
		"inquiries":  inquiries,
		"pagination": pagination,
	}
	common.ResponseOK(c, response, "Inquiries retrieved successfully")
}

func (h *InquiryHandler) Update(c *gin.Context) {
	var req domain.InquiryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	if err := h.usecase.Update(c.Request.Context(), common.GetAuthContext(c), c.Param("id"), &req); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Inquiry updated successfully")
}

func (h *InquiryHandler) Transition(c *gin.Context) {
	var req domain.InquiryTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, err.Error())
		return
	}

	inquiry, err := h.usecase.Transition(c.Request.Context(), common.GetAuthContext(c), c.Param("id"), &req)
	if err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseOK(c, inquiry, "Inquiry status updated successfully")
}

func (h *InquiryHandler) Delete(c *gin.Context) {
	if err := h.usecase.Delete(c.Request.Context(), common.GetAuthContext(c), c.Param("id")); err != nil {
		common.ResponseError(c, err)
		return
	}
	common.ResponseNoContent(c, "Inquiry deleted successfully")
}
