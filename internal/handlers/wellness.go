package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurevo/aurevo-server/internal/store"
	"github.com/aurevo/aurevo-server/internal/types"
)

type WellnessHandler struct {
	registry *store.Registry
}

func NewWellnessHandler(registry *store.Registry) *WellnessHandler {
	return &WellnessHandler{registry: registry}
}

func (wh *WellnessHandler) SetMetric(c *gin.Context) {
	set, ok := userStores(c, wh.registry)
	if !ok {
		return
	}
	var req struct {
		WaterML  *int     `json:"water_ml"`
		Calories *int     `json:"calories"`
		Steps    *int     `json:"steps"`
		SleepHrs *float64 `json:"sleep_hrs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	var (
		rec    *types.WellnessDailyRecord
		result store.SyncResult
		err    error
	)
	switch {
	case req.WaterML != nil:
		rec, result, err = set.Wellness.SetWater(ctx, *req.WaterML)
	case req.Calories != nil:
		rec, result, err = set.Wellness.SetCalories(ctx, *req.Calories)
	case req.Steps != nil:
		rec, result, err = set.Wellness.SetSteps(ctx, *req.Steps)
	case req.SleepHrs != nil:
		rec, result, err = set.Wellness.SetSleep(ctx, *req.SleepHrs)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "no metric provided"})
		return
	}
	if err != nil {
		RespondStoreError(c, err)
		return
	}
	RespondOK(c, gin.H{"record": rec, "sync": result.Status})
}

func (wh *WellnessHandler) ListDays(c *gin.Context) {
	set, ok := userStores(c, wh.registry)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"days": set.Wellness.Days()})
}
