package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/davidalvarezc/flipradar/internal/config"
	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/engine"
)

// Refresher is the slice of the engine the refresh handler needs.
type Refresher interface {
	Refresh(ctx context.Context, userID string, req engine.RefreshRequest) (engine.RefreshResult, error)
}

// RefreshHandler serves the refresh trigger endpoint.
type RefreshHandler struct {
	engine   Refresher
	defaults config.RefreshConfig
	notifier Notifier
	logger   *slog.Logger
}

// NewRefreshHandler creates a RefreshHandler. defaults fill any parameter
// the request body leaves unset; notifier may be nil.
func NewRefreshHandler(eng Refresher, defaults config.RefreshConfig, notifier Notifier, logger *slog.Logger) *RefreshHandler {
	return &RefreshHandler{
		engine:   eng,
		defaults: defaults,
		notifier: notifier,
		logger:   logHandler(logger, "refresh"),
	}
}

// refreshIn is the JSON body of a refresh request. Pointer fields
// distinguish "absent" from zero so an explicit 0 threshold is honored.
type refreshIn struct {
	PlatformsBuy  []string `json:"platforms_buy"`
	PlatformsSell []string `json:"platforms_sell"`
	MinROI        *float64 `json:"min_roi"`
	MinNetMargin  *float64 `json:"min_net_margin"`
	Limit         *int     `json:"limit"`
	IncludeDemo   *bool    `json:"include_demo"`
}

// Refresh runs one refresh pass for the owner.
// POST /api/refresh
func (h *RefreshHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	in := refreshIn{}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	req, err := h.buildRequest(in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	userID := owner(r)
	res, err := h.engine.Refresh(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			writeError(w, http.StatusConflict, "settings must be configured before refreshing")
			return
		}
		h.logger.ErrorContext(r.Context(), "refresh failed",
			slog.String("error", err.Error()),
		)
		h.notifyFailure(r.Context(), userID, err)
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	if h.notifier != nil {
		if nerr := h.notifier.RefreshCompleted(r.Context(), userID, res.Updated, res.Considered, res.Skipped); nerr != nil {
			h.logger.WarnContext(r.Context(), "refresh notification failed",
				slog.String("error", nerr.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"updated":    res.Updated,
		"considered": res.Considered,
		"skipped":    res.Skipped,
	})
}

func (h *RefreshHandler) notifyFailure(ctx context.Context, userID string, cause error) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.RefreshFailed(ctx, userID, cause); err != nil {
		h.logger.WarnContext(ctx, "refresh failure notification failed",
			slog.String("error", err.Error()),
		)
	}
}

// buildRequest merges the request body over the configured defaults.
func (h *RefreshHandler) buildRequest(in refreshIn) (engine.RefreshRequest, error) {
	buy := in.PlatformsBuy
	if len(buy) == 0 {
		buy = h.defaults.PlatformsBuy
	}
	sell := in.PlatformsSell
	if len(sell) == 0 {
		sell = h.defaults.PlatformsSell
	}

	req := engine.RefreshRequest{
		MinROI:       h.defaults.MinROI,
		MinNetMargin: h.defaults.MinNetMargin,
		Limit:        h.defaults.Limit,
		IncludeDemo:  h.defaults.IncludeDemo,
	}
	if in.MinROI != nil {
		req.MinROI = *in.MinROI
	}
	if in.MinNetMargin != nil {
		req.MinNetMargin = *in.MinNetMargin
	}
	if in.Limit != nil {
		if *in.Limit < 1 {
			return engine.RefreshRequest{}, errors.New("limit must be positive")
		}
		req.Limit = *in.Limit
	}
	if in.IncludeDemo != nil {
		req.IncludeDemo = *in.IncludeDemo
	}

	var err error
	if req.PlatformsBuy, err = parsePlatforms(buy); err != nil {
		return engine.RefreshRequest{}, err
	}
	if req.PlatformsSell, err = parsePlatforms(sell); err != nil {
		return engine.RefreshRequest{}, err
	}
	return req, nil
}

func parsePlatforms(names []string) ([]domain.Platform, error) {
	out := make([]domain.Platform, 0, len(names))
	for _, n := range names {
		p := domain.Platform(n)
		if !p.Valid() {
			return nil, errors.New("unknown platform " + n)
		}
		out = append(out, p)
	}
	return out, nil
}
