package handlers

import (
	"net/http"

	"microgrid-sim/internal/api/models"
	"microgrid-sim/internal/strategy"

	"github.com/gin-gonic/gin"
)

var strategyDescriptions = map[string]string{
	strategy.NetLoadName: "Requests load minus PV from the battery every step, so the battery covers any deficit and absorbs any surplus within its limits.",
}

// ListStrategies handles GET /api/v1/strategies
func ListStrategies(c *gin.Context) {
	names := strategy.Names()
	strategies := make([]models.StrategyInfo, 0, len(names))
	for _, name := range names {
		strategies = append(strategies, models.StrategyInfo{
			Name:        name,
			Description: strategyDescriptions[name],
		})
	}
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
