package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

const (
	defaultDashboardWindow = 7
	defaultAnalysisWindow  = 90
)

// AnalyticsService builds dashboards and analyses
type AnalyticsService interface {
	Dashboard(ctx context.Context, userID uuid.UUID, windowDays int) (*entities.Dashboard, error)
	Analyze(ctx context.Context, userID uuid.UUID, windowDays int) (*entities.Analysis, error)
}

// Recommender produces predicted transactions and suggestions
type Recommender interface {
	Recommend(ctx context.Context, userID uuid.UUID) (*entities.Recommendations, error)
}

// AnalyticsHandlers serves the dashboard, analysis and recommendation endpoints
type AnalyticsHandlers struct {
	analytics   AnalyticsService
	recommender Recommender
	logger      *zap.Logger
}

func NewAnalyticsHandlers(analytics AnalyticsService, recommender Recommender, logger *zap.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{analytics: analytics, recommender: recommender, logger: logger}
}

// Dashboard handles GET /user/:userId
// @Summary Short-window dashboard
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param window query int false "Window in days" default(7)
// @Success 200 {object} entities.Dashboard
// @Router /user/{userId} [get]
func (h *AnalyticsHandlers) Dashboard(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", ErrCodeInvalidUserID)
	if !ok {
		return
	}
	window, ok := windowQuery(c, defaultDashboardWindow)
	if !ok {
		return
	}

	dashboard, err := h.analytics.Dashboard(c.Request.Context(), userID, window)
	if err != nil {
		h.logger.Warn("Failed to build dashboard", zap.Error(err), zap.String("user_id", userID.String()))
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, dashboard)
}

// Analysis handles GET /user/ai/:userId
// @Summary Financial analysis with rule-based and AI insights
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param window query int false "Window in days" default(90)
// @Success 200 {object} entities.Analysis
// @Failure 404 {object} entities.ErrorResponse
// @Router /user/ai/{userId} [get]
func (h *AnalyticsHandlers) Analysis(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", ErrCodeInvalidUserID)
	if !ok {
		return
	}
	window, ok := windowQuery(c, defaultAnalysisWindow)
	if !ok {
		return
	}

	analysis, err := h.analytics.Analyze(c.Request.Context(), userID, window)
	if err != nil {
		h.logger.Warn("Failed to build analysis",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("window", window))
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, analysis)
}

// Recommendations handles GET /user/ai/:userId/recommendations
// @Summary Predicted transactions and savings suggestions
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} entities.Recommendations
// @Router /user/ai/{userId}/recommendations [get]
func (h *AnalyticsHandlers) Recommendations(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", ErrCodeInvalidUserID)
	if !ok {
		return
	}

	recs, err := h.recommender.Recommend(c.Request.Context(), userID)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, recs)
}
