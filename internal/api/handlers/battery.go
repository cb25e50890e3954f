package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"microgrid-sim/internal/api/models"
	"microgrid-sim/internal/config"
	"microgrid-sim/internal/logger"

	"github.com/gin-gonic/gin"
)

// BatteryHandler handles battery-related requests
type BatteryHandler struct {
	batteryDir string
	log        logger.Logger
}

// DefaultBatteryDir returns BATTERY_DIR, or examples/batteries, as an absolute path.
func DefaultBatteryDir() string {
	dir := os.Getenv("BATTERY_DIR")
	if dir == "" {
		dir = filepath.Join("examples", "batteries")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// NewBatteryHandler creates a new battery handler
func NewBatteryHandler(dir string, log logger.Logger) *BatteryHandler {
	if log == nil {
		log = logger.NopLogger{}
	}
	log.Infof("using battery directory: %s", dir)
	return &BatteryHandler{batteryDir: dir, log: log}
}

// ListBatteries handles GET /api/v1/batteries
func (h *BatteryHandler) ListBatteries(c *gin.Context) {
	presets, err := config.ListBatteryPresets(h.batteryDir, func(path string, err error) {
		h.log.Warnf("skipping battery file %s: %v", path, err)
	})
	if err != nil {
		h.log.Warnf("failed to read battery directory %s: %v", h.batteryDir, err)
	}

	batteries := make([]models.BatteryInfo, 0, len(presets))
	for _, p := range presets {
		batteries = append(batteries, models.BatteryInfo{
			ID:   p.ID,
			Name: p.Battery.Name,
			File: p.Path,
			Specs: models.BatterySpecs{
				CapacityWh:         p.Battery.CapacityWh,
				MaxChargePowerW:    p.Battery.MaxChargePowerW,
				MaxDischargePowerW: p.Battery.MaxDischargePowerW,
				InitialSOC:         p.Battery.InitialSOC,
			},
		})
	}
	h.log.Debugf("returning %d batteries", len(batteries))
	c.JSON(http.StatusOK, gin.H{"batteries": batteries, "count": len(batteries)})
}
