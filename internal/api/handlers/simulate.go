package handlers

import (
	"fmt"
	"net/http"
	"time"

	"microgrid-sim/internal/analysis"
	"microgrid-sim/internal/api/models"
	"microgrid-sim/internal/config"
	"microgrid-sim/internal/data"
	"microgrid-sim/internal/logger"
	"microgrid-sim/internal/metrics"
	"microgrid-sim/internal/model"
	"microgrid-sim/internal/sim"
	"microgrid-sim/internal/strategy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SimulateHandler handles simulation requests
type SimulateHandler struct {
	datasetDir string
	batteryDir string
	cache      *data.Cache
	log        logger.Logger
	metrics    *metrics.Recorder
}

// NewSimulateHandler creates a new simulate handler. cache and rec may be nil.
func NewSimulateHandler(datasetDir, batteryDir string, cache *data.Cache, rec *metrics.Recorder, log logger.Logger) *SimulateHandler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &SimulateHandler{
		datasetDir: datasetDir,
		batteryDir: batteryDir,
		cache:      cache,
		log:        log,
		metrics:    rec,
	}
}

// Simulate handles POST /api/v1/simulate
func (h *SimulateHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	samples, err := h.loadSamples(req.DatasetID, req.Series)
	if err != nil {
		writeError(c, err)
		return
	}
	samples = limitSteps(samples, req.Options.LimitSteps)

	cfg, err := h.buildConfig(req.Config)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	id := uuid.NewString()
	result, err := h.run(cfg, samples)
	if err != nil {
		h.log.Warnf("run %s failed: %v", id, err)
		writeError(c, err)
		return
	}
	h.log.Infof("run %s: steps=%d final_soc=%.3f", id, len(result.Ledger), result.FinalSOC)

	response := models.SimulateResponse{
		ID:      id,
		Status:  "completed",
		Summary: buildSummary(analysis.Summarize(result, cfg.TimestepHours())),
	}
	if req.Options.IncludeLedger {
		response.Ledger = convertLedger(result.Ledger)
	}
	c.JSON(http.StatusOK, response)
}

// Compare handles POST /api/v1/simulate/compare
func (h *SimulateHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	seen := make(map[string]bool, len(req.Variations))
	for _, v := range req.Variations {
		if seen[v.Name] {
			writeError(c, fmt.Errorf("%w: duplicate variation name %q", errBadRequest, v.Name))
			return
		}
		seen[v.Name] = true
	}

	// Load data once
	samples, err := h.loadSamples(req.DatasetID, req.Series)
	if err != nil {
		writeError(c, err)
		return
	}
	samples = limitSteps(samples, req.Options.LimitSteps)

	summaries := make(map[string]analysis.Summary, len(req.Variations))
	failed := make([]models.ComparisonResult, 0)

	for _, variation := range req.Variations {
		cfg, err := h.buildConfig(mergeRunConfig(req.BaseConfig, variation.Config))
		if err != nil {
			detail := errorDetail("INVALID_CONFIG", err)
			failed = append(failed, models.ComparisonResult{Name: variation.Name, Error: &detail})
			continue
		}
		result, err := h.run(cfg, samples)
		if err != nil {
			_, code := classify(err)
			detail := errorDetail(code, err)
			failed = append(failed, models.ComparisonResult{Name: variation.Name, Error: &detail})
			continue
		}
		summaries[variation.Name] = analysis.Summarize(result, cfg.TimestepHours())
	}

	comparison := make([]models.ComparisonResult, 0, len(req.Variations))
	for i, r := range analysis.RankBySelfSufficiency(summaries) {
		s := buildSummary(r.Summary)
		comparison = append(comparison, models.ComparisonResult{Rank: i + 1, Name: r.Name, Summary: &s})
	}
	comparison = append(comparison, failed...)

	c.JSON(http.StatusOK, models.CompareResponse{
		ID:         uuid.NewString(),
		Comparison: comparison,
	})
}

// Helper methods

func (h *SimulateHandler) loadSamples(datasetID string, series *models.InlineSeries) (model.Samples, error) {
	switch {
	case datasetID != "" && series != nil:
		return nil, fmt.Errorf("%w: dataset_id and series are mutually exclusive", errBadRequest)
	case datasetID != "":
		ds, err := data.FindDataset(h.datasetDir, datasetID)
		if err != nil {
			return nil, err
		}
		return h.cache.Load(ds.Source, h.datasetDir)
	case series != nil:
		return inlineSamples(series)
	default:
		return nil, fmt.Errorf("%w: one of dataset_id or series is required", errBadRequest)
	}
}

func inlineSamples(s *models.InlineSeries) (model.Samples, error) {
	n := len(s.IrradianceWm2)
	w := &data.Weather{
		Time:       s.Time,
		WindSpeed:  s.WindSpeedMs,
		Irradiance: s.IrradianceWm2,
	}
	if w.Time == nil {
		w.Time = make([]time.Time, n)
	}
	if w.WindSpeed == nil {
		w.WindSpeed = make([]float64, n)
	}
	if len(w.Time) != n {
		return nil, &model.InputError{Series: "time", Index: -1, Reason: fmt.Sprintf("length %d does not match irradiance length %d", len(w.Time), n)}
	}
	if len(w.WindSpeed) != n {
		return nil, &model.InputError{Series: "wind_speed", Index: -1, Reason: fmt.Sprintf("length %d does not match irradiance length %d", len(w.WindSpeed), n)}
	}
	return data.Align(s.LoadW, w, data.AlignOptions{})
}

func limitSteps(samples model.Samples, limit int) model.Samples {
	if limit > 0 && limit < len(samples) {
		return samples[:limit]
	}
	return samples
}

func (h *SimulateHandler) buildConfig(req models.RunConfig) (*config.Config, error) {
	cfg := &config.Config{
		BatteryFile: req.BatteryFile,
		Battery:     toBatteryConfig(req.Battery),
		PV: config.PVConfig{
			Efficiency: req.PV.Efficiency,
			AreaM2:     req.PV.AreaM2,
		},
		Simulation: config.SimulationConfig{
			TimestepSeconds: req.TimestepSeconds,
			LoadScale:       req.LoadScale,
		},
		Strategy: config.StrategyConfig{Name: req.Strategy.Name},
	}

	// In requests battery_file is a preset ID (e.g. "reference_20kwh"), not a path.
	if cfg.BatteryFile != "" {
		loaded, err := config.LoadBatteryPreset(h.batteryDir, cfg.BatteryFile)
		if err != nil {
			return nil, err
		}
		cfg.Battery = config.MergeBattery(loaded, cfg.Battery)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *SimulateHandler) run(cfg *config.Config, samples model.Samples) (*sim.Result, error) {
	batt, err := cfg.NewBattery()
	if err != nil {
		return nil, err
	}
	pv, err := cfg.NewPVArray()
	if err != nil {
		return nil, err
	}
	strat, err := strategy.New(cfg.Strategy.Name)
	if err != nil {
		return nil, err
	}
	engine := sim.New(sim.WithLoadScale(cfg.Simulation.LoadScale), sim.WithLogger(h.log))

	start := time.Now()
	result, err := engine.Run(samples, batt, pv, strat)
	h.metrics.ObserveRun(time.Since(start), len(samples), err)
	return result, err
}

func toBatteryConfig(b models.BatteryConfig) config.BatteryConfig {
	return config.BatteryConfig{
		Name:               b.Name,
		CapacityWh:         b.CapacityWh,
		MaxChargePowerW:    b.MaxChargePowerW,
		MaxDischargePowerW: b.MaxDischargePowerW,
		InitialSOC:         b.InitialSOC,
		SOCPolicy:          b.SOCPolicy,
	}
}

// mergeRunConfig overlays the non-zero fields of override onto base.
func mergeRunConfig(base, override models.RunConfig) models.RunConfig {
	merged := base
	if override.BatteryFile != "" {
		merged.BatteryFile = override.BatteryFile
	}
	b := config.MergeBattery(toBatteryConfig(base.Battery), toBatteryConfig(override.Battery))
	merged.Battery = models.BatteryConfig{
		Name:               b.Name,
		CapacityWh:         b.CapacityWh,
		MaxChargePowerW:    b.MaxChargePowerW,
		MaxDischargePowerW: b.MaxDischargePowerW,
		InitialSOC:         b.InitialSOC,
		SOCPolicy:          b.SOCPolicy,
	}
	if override.PV.Efficiency != 0 {
		merged.PV.Efficiency = override.PV.Efficiency
	}
	if override.PV.AreaM2 != 0 {
		merged.PV.AreaM2 = override.PV.AreaM2
	}
	if override.TimestepSeconds != 0 {
		merged.TimestepSeconds = override.TimestepSeconds
	}
	if override.LoadScale != 0 {
		merged.LoadScale = override.LoadScale
	}
	if override.Strategy.Name != "" {
		merged.Strategy = override.Strategy
	}
	return merged
}

func buildSummary(s analysis.Summary) models.RunSummary {
	return models.RunSummary{
		Strategy:        s.Strategy,
		TotalSteps:      s.Steps,
		Window:          models.TimeWindow{Start: s.StartUTC, End: s.EndUTC},
		FinalSOC:        s.FinalSOC,
		MinSOC:          s.MinSOC,
		MaxSOC:          s.MaxSOC,
		MeanSOC:         s.MeanSOC,
		LoadWh:          s.LoadWh,
		PVWh:            s.PVWh,
		ChargedWh:       s.BatteryChargeWh,
		DischargedWh:    s.BatteryDischargeWh,
		ImportWh:        s.GridImportWh,
		ExportWh:        s.GridExportWh,
		ImportSteps:     s.ImportSteps,
		SelfSufficiency: s.SelfSufficiency,
		NetP05W:         s.NetP05W,
		NetP95W:         s.NetP95W,
	}
}

func convertLedger(ledger []sim.LedgerRow) []models.LedgerRow {
	result := make([]models.LedgerRow, len(ledger))
	for i, row := range ledger {
		result[i] = models.LedgerRow{
			Index:             row.Index,
			Time:              row.Time,
			LoadW:             row.LoadW,
			IrradianceWm2:     row.IrradianceWm2,
			WindSpeedMs:       row.WindSpeedMs,
			PVW:               row.PVW,
			Action:            string(row.Action),
			RequestedBatteryW: row.RequestedBatteryW,
			BatteryW:          row.BatteryW,
			NetW:              row.NetW,
			SOCStart:          row.SOCStart,
			SOCEnd:            row.SOCEnd,
		}
	}
	return result
}
