package handlers

import (
	"net/http"

	"tasktimer/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SummaryHandler struct {
	db             *gorm.DB
	summaryService services.SummaryService
}

func NewSummaryHandler(db *gorm.DB, summaryService services.SummaryService) *SummaryHandler {
	return &SummaryHandler{db: db, summaryService: summaryService}
}

// GetTimeSummary answers GET /api/time-summary?period=&start_date=&end_date=.
func (h *SummaryHandler) GetTimeSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	query := services.SummaryQuery{
		Period:    c.Query("period"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	summary, err := h.summaryService.Summarize(requestDB(h.db, c), userID, query)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
