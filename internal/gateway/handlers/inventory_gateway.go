package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockwise-system/config"
	"stockwise-system/internal/gateway/middleware"
	"stockwise-system/internal/reorder"
	invhandler "stockwise-system/internal/services/inventory/handler"
)

type InventoryHTTPHandler struct {
	inventory     *invhandler.InventoryHandler
	defaultPolicy config.PolicyConfig
}

func NewInventoryHTTPHandler(inventory *invhandler.InventoryHandler, defaultPolicy config.PolicyConfig) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{
		inventory:     inventory,
		defaultPolicy: defaultPolicy,
	}
}

// Helper functions
func (s *InventoryHTTPHandler) success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (s *InventoryHTTPHandler) error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

func (s *InventoryHTTPHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, invhandler.ErrProductNotFound),
		errors.Is(err, invhandler.ErrStoreNotFound):
		s.error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, invhandler.ErrInvalidProduct),
		errors.Is(err, invhandler.ErrInvalidStore),
		errors.Is(err, reorder.ErrInvalidPolicy),
		errors.Is(err, reorder.ErrInvalidItem):
		s.error(c, http.StatusBadRequest, err.Error())
	default:
		s.error(c, http.StatusInternalServerError, err.Error())
	}
}

func parseInt64Param(c *gin.Context, param string) (int64, error) {
	return strconv.ParseInt(c.Param(param), 10, 64)
}

func parseStringQuery(c *gin.Context, param string) *string {
	str := c.Query(param)
	if str == "" {
		return nil
	}
	return &str
}

func parseBoolQuery(c *gin.Context, param string) bool {
	val, err := strconv.ParseBool(c.Query(param))
	if err != nil {
		return false
	}
	return val
}

// policyFromQuery builds the evaluation policy, starting from configured
// defaults and applying per-request query overrides. Unparseable overrides
// are an error, never silently replaced by the defaults.
func (s *InventoryHTTPHandler) policyFromQuery(c *gin.Context) (reorder.Policy, error) {
	policy := reorder.Policy{
		TargetLevel:       s.defaultPolicy.TargetLevel,
		LowStockThreshold: s.defaultPolicy.LowStockThreshold,
		CriticalRatio:     s.defaultPolicy.CriticalRatio,
	}

	if str := c.Query("target_level"); str != "" {
		val, err := strconv.Atoi(str)
		if err != nil {
			return reorder.Policy{}, fmt.Errorf("invalid target_level %q", str)
		}
		policy.TargetLevel = val
	}
	if str := c.Query("threshold"); str != "" {
		val, err := strconv.Atoi(str)
		if err != nil {
			return reorder.Policy{}, fmt.Errorf("invalid threshold %q", str)
		}
		policy.LowStockThreshold = val
	}
	if str := c.Query("critical_ratio"); str != "" {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return reorder.Policy{}, fmt.Errorf("invalid critical_ratio %q", str)
		}
		policy.CriticalRatio = val
	}

	return policy, nil
}

// Product endpoints
func (s *InventoryHTTPHandler) CreateProduct(c *gin.Context) {
	var req invhandler.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := s.inventory.CreateProduct(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, product)
}

func (s *InventoryHTTPHandler) GetProduct(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := s.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, product)
}

func (s *InventoryHTTPHandler) ListProducts(c *gin.Context) {
	filter := invhandler.ListProductsFilter{
		Category:        parseStringQuery(c, "category"),
		SearchTerm:      parseStringQuery(c, "search"),
		IncludeInactive: parseBoolQuery(c, "include_inactive"),
	}

	products, err := s.inventory.ListProducts(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, products)
}

func (s *InventoryHTTPHandler) UpdateProduct(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req invhandler.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := s.inventory.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, product)
}

func (s *InventoryHTTPHandler) DeleteProduct(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := s.inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, gin.H{"deleted": id})
}

// Store endpoints
func (s *InventoryHTTPHandler) CreateStore(c *gin.Context) {
	var req invhandler.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	store, err := s.inventory.CreateStore(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, store)
}

func (s *InventoryHTTPHandler) GetStore(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid store ID")
		return
	}

	store, err := s.inventory.GetStore(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, store)
}

func (s *InventoryHTTPHandler) ListStores(c *gin.Context) {
	stores, err := s.inventory.ListStores(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, stores)
}

func (s *InventoryHTTPHandler) UpdateStore(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid store ID")
		return
	}

	var req invhandler.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	store, err := s.inventory.UpdateStore(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, store)
}

func (s *InventoryHTTPHandler) DeleteStore(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		s.error(c, http.StatusBadRequest, "Invalid store ID")
		return
	}

	if err := s.inventory.DeleteStore(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, gin.H{"deleted": id})
}

// Reorder endpoints
func (s *InventoryHTTPHandler) ReorderSuggestions(c *gin.Context) {
	policy, err := s.policyFromQuery(c)
	if err != nil {
		s.error(c, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := s.inventory.ReorderPlan(c.Request.Context(), policy)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"recommendations": plan.Recommendations,
		"total_cost":      plan.TotalCost,
	})
}

func (s *InventoryHTTPHandler) ApplyRestock(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)

	policy, err := s.policyFromQuery(c)
	if err != nil {
		s.error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.inventory.ApplyRestock(c.Request.Context(), policy, userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, result)
}

func (s *InventoryHTTPHandler) LowStockAlerts(c *gin.Context) {
	policy, err := s.policyFromQuery(c)
	if err != nil {
		s.error(c, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := s.inventory.LowStockAlerts(c.Request.Context(), policy)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"threshold": policy.LowStockThreshold,
		"alerts":    alerts,
	})
}

func (s *InventoryHTTPHandler) CategorySummary(c *gin.Context) {
	counts, err := s.inventory.CategorySummary(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, counts)
}

func (s *InventoryHTTPHandler) Movements(c *gin.Context) {
	referenceID := c.Param("reference")
	if referenceID == "" {
		s.error(c, http.StatusBadRequest, "Movement reference is required")
		return
	}

	movements, err := s.inventory.Movements(c.Request.Context(), referenceID)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.success(c, movements)
}
