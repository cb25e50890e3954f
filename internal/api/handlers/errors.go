package handlers

import (
	"errors"
	"net/http"

	"microgrid-sim/internal/api/models"
	"microgrid-sim/internal/data"
	"microgrid-sim/internal/model"

	"github.com/gin-gonic/gin"
)

var errBadRequest = errors.New("bad request")

// classify maps an error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, data.ErrNotFound):
		return http.StatusNotFound, "DATASET_NOT_FOUND"
	case errors.Is(err, model.ErrBounds):
		return http.StatusUnprocessableEntity, "SOC_OUT_OF_BOUNDS"
	case errors.Is(err, model.ErrInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, model.ErrConfig):
		return http.StatusBadRequest, "INVALID_CONFIG"
	default:
		return http.StatusInternalServerError, "SIMULATION_ERROR"
	}
}

func errorDetail(code string, err error) models.ErrorDetail {
	d := models.ErrorDetail{Code: code, Message: err.Error()}

	var inErr *model.InputError
	var bErr *model.BoundsError
	var cfgErr *model.ConfigError
	switch {
	case errors.As(err, &inErr):
		d.Details = map[string]interface{}{"series": inErr.Series, "index": inErr.Index}
	case errors.As(err, &bErr):
		d.Details = map[string]interface{}{"soc": bErr.SOC}
	case errors.As(err, &cfgErr):
		d.Details = map[string]interface{}{"field": cfgErr.Field}
	}
	return d
}

func writeError(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, models.ErrorResponse{Error: errorDetail(code, err)})
}

func writeErrorCode(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{Error: errorDetail(code, err)})
}
