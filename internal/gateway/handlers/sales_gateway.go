package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockwise-system/internal/gateway/middleware"
	invhandler "stockwise-system/internal/services/inventory/handler"
	saleshandler "stockwise-system/internal/services/sales/handler"
)

type SalesHTTPHandler struct {
	sales *saleshandler.SalesHandler
}

func NewSalesHTTPHandler(sales *saleshandler.SalesHandler) *SalesHTTPHandler {
	return &SalesHTTPHandler{
		sales: sales,
	}
}

func (s *SalesHTTPHandler) success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func (s *SalesHTTPHandler) error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

func (s *SalesHTTPHandler) RecordSale(c *gin.Context) {
	var req saleshandler.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	userID := c.GetInt64(middleware.ContextUserIDKey)

	transaction, err := s.sales.RecordSale(c.Request.Context(), req, userID)
	if err != nil {
		switch {
		case errors.Is(err, invhandler.ErrProductNotFound),
			errors.Is(err, invhandler.ErrStoreNotFound):
			s.error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, saleshandler.ErrInsufficientStock),
			errors.Is(err, saleshandler.ErrInvalidTransaction):
			s.error(c, http.StatusBadRequest, err.Error())
		default:
			s.error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.success(c, transaction)
}

func (s *SalesHTTPHandler) ListTransactions(c *gin.Context) {
	filter := saleshandler.ListTransactionsFilter{}

	if str := c.Query("product_id"); str != "" {
		if id, err := strconv.ParseInt(str, 10, 64); err == nil {
			filter.ProductID = &id
		}
	}
	if str := c.Query("store_id"); str != "" {
		if id, err := strconv.ParseInt(str, 10, 64); err == nil {
			filter.StoreID = &id
		}
	}
	if str := c.Query("from"); str != "" {
		if from, err := time.Parse(time.RFC3339, str); err == nil {
			filter.From = &from
		}
	}
	if str := c.Query("to"); str != "" {
		if to, err := time.Parse(time.RFC3339, str); err == nil {
			filter.To = &to
		}
	}

	transactions, err := s.sales.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, transactions)
}

func (s *SalesHTTPHandler) DailySummary(c *gin.Context) {
	day := time.Now().UTC()
	if str := c.Query("date"); str != "" {
		parsed, err := time.Parse("2006-01-02", str)
		if err != nil {
			s.error(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summary, err := s.sales.DailySummary(c.Request.Context(), day)
	if err != nil {
		s.error(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.success(c, summary)
}
