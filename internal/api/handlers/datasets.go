package handlers

import (
	"net/http"

	"microgrid-sim/internal/api/models"
	"microgrid-sim/internal/data"

	"github.com/gin-gonic/gin"
)

// DatasetHandler lists the datasets indexed in a data directory
type DatasetHandler struct {
	dir string
}

func NewDatasetHandler(dir string) *DatasetHandler {
	return &DatasetHandler{dir: dir}
}

// ListDatasets handles GET /api/v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	all, err := data.ListDatasets(h.dir)
	if err != nil {
		writeErrorCode(c, http.StatusInternalServerError, "DATASETS_LOAD_ERROR", err)
		return
	}

	datasets := make([]models.DatasetInfo, len(all))
	for i, ds := range all {
		datasets[i] = models.DatasetInfo{
			ID:                ds.ID,
			Name:              ds.Name,
			Description:       ds.Description,
			ResolutionSeconds: ds.ResolutionSeconds,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"datasets": datasets,
		"count":    len(datasets),
	})
}
