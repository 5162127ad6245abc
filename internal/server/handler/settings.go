package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// SettingsHandler serves the per-owner cost settings and fee schedule
// endpoints.
type SettingsHandler struct {
	settings domain.SettingsStore
	fees     domain.FeeStore
	logger   *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(settings domain.SettingsStore, fees domain.FeeStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		fees:     fees,
		logger:   logHandler(logger, "settings"),
	}
}

// settingsBody is the JSON shape of the owner's cost settings, both in and
// out.
type settingsBody struct {
	PackagingCost       float64 `json:"packaging_cost"`
	TaxEnabled          bool    `json:"tax_enabled"`
	TaxRate             float64 `json:"tax_rate"`
	RiskBuffer          float64 `json:"risk_buffer"`
	LiquidityDaysLow    int     `json:"liquidity_days_low"`
	LiquidityDaysMedium int     `json:"liquidity_days_medium"`
	LiquidityDaysHigh   int     `json:"liquidity_days_high"`
}

// GetSettings returns the owner's cost settings, 404 when none exist yet.
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context(), owner(r))
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			writeError(w, http.StatusNotFound, "settings not configured")
			return
		}
		h.logger.ErrorContext(r.Context(), "get settings failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, settingsBody{
		PackagingCost:       s.PackagingCost,
		TaxEnabled:          s.TaxEnabled,
		TaxRate:             s.TaxRate,
		RiskBuffer:          s.RiskBuffer,
		LiquidityDaysLow:    s.LiquidityDaysLow,
		LiquidityDaysMedium: s.LiquidityDaysMedium,
		LiquidityDaysHigh:   s.LiquidityDaysHigh,
	})
}

// PutSettings replaces the owner's cost settings.
// PUT /api/settings
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var in settingsBody
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if in.PackagingCost < 0 || in.TaxRate < 0 || in.RiskBuffer < 0 {
		writeError(w, http.StatusUnprocessableEntity, "cost parameters must not be negative")
		return
	}
	if in.LiquidityDaysLow <= 0 || in.LiquidityDaysMedium <= 0 || in.LiquidityDaysHigh <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "liquidity day buckets must be positive")
		return
	}

	s := domain.UserSettings{
		UserID:              owner(r),
		PackagingCost:       in.PackagingCost,
		TaxEnabled:          in.TaxEnabled,
		TaxRate:             in.TaxRate,
		RiskBuffer:          in.RiskBuffer,
		LiquidityDaysLow:    in.LiquidityDaysLow,
		LiquidityDaysMedium: in.LiquidityDaysMedium,
		LiquidityDaysHigh:   in.LiquidityDaysHigh,
	}
	if err := h.settings.Upsert(r.Context(), s); err != nil {
		h.logger.ErrorContext(r.Context(), "upsert settings failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	writeJSON(w, http.StatusOK, in)
}

// feeBody is the JSON shape of one platform fee row.
type feeBody struct {
	Platform   string  `json:"platform"`
	FeePercent float64 `json:"fee_percent"`
	FeeFixed   float64 `json:"fee_fixed"`
}

// GetFees returns the owner's fee schedule.
// GET /api/fees
func (h *SettingsHandler) GetFees(w http.ResponseWriter, r *http.Request) {
	fees, err := h.fees.ListByUser(r.Context(), owner(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list fees failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load fees")
		return
	}

	out := make([]feeBody, 0, len(fees))
	for _, f := range fees {
		out = append(out, feeBody{
			Platform:   string(f.Platform),
			FeePercent: f.FeePercent,
			FeeFixed:   f.FeeFixed,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"fees": out})
}

// PutFees replaces the owner's entire fee schedule.
// PUT /api/fees
func (h *SettingsHandler) PutFees(w http.ResponseWriter, r *http.Request) {
	var in []feeBody
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := make([]domain.PlatformFee, 0, len(in))
	seen := make(map[domain.Platform]bool, len(in))
	for _, f := range in {
		plat := domain.Platform(f.Platform)
		if !plat.Valid() {
			writeError(w, http.StatusUnprocessableEntity, "unknown platform "+f.Platform)
			return
		}
		if seen[plat] {
			writeError(w, http.StatusUnprocessableEntity, "duplicate platform "+f.Platform)
			return
		}
		if f.FeePercent < 0 || f.FeePercent >= 1 || f.FeeFixed < 0 {
			writeError(w, http.StatusUnprocessableEntity, "fee_percent must be in [0,1) and fee_fixed must not be negative")
			return
		}
		seen[plat] = true
		rows = append(rows, domain.PlatformFee{
			UserID:     owner(r),
			Platform:   plat,
			FeePercent: f.FeePercent,
			FeeFixed:   f.FeeFixed,
		})
	}

	if err := h.fees.Replace(r.Context(), owner(r), rows); err != nil {
		h.logger.ErrorContext(r.Context(), "replace fees failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save fees")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"fees": in})
}
