package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/davidalvarezc/flipradar/internal/demo"
	"github.com/davidalvarezc/flipradar/internal/domain"
)

// DemoLoader is the slice of the demo package the handler needs.
type DemoLoader interface {
	Load(ctx context.Context, userID string, force bool) (demo.Result, error)
}

// DemoHandler serves the demo dataset loader endpoint.
type DemoHandler struct {
	seeder   DemoLoader
	notifier Notifier
	logger   *slog.Logger
}

// NewDemoHandler creates a DemoHandler. notifier may be nil.
func NewDemoHandler(seeder DemoLoader, notifier Notifier, logger *slog.Logger) *DemoHandler {
	return &DemoHandler{
		seeder:   seeder,
		notifier: notifier,
		logger:   logHandler(logger, "demo"),
	}
}

// demoIn is the JSON body of the demo load request.
type demoIn struct {
	Force bool `json:"force"`
}

// LoadDemo seeds the demo dataset for the owner.
// POST /api/demo/load
func (h *DemoHandler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	in := demoIn{}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	userID := owner(r)
	res, err := h.seeder.Load(r.Context(), userID, in.Force)
	if err != nil {
		if errors.Is(err, domain.ErrDemoConflict) {
			writeError(w, http.StatusConflict, "account already holds real listings; pass force=true to mix in demo data")
			return
		}
		h.logger.ErrorContext(r.Context(), "demo load failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load demo data")
		return
	}

	if h.notifier != nil {
		if nerr := h.notifier.DemoLoaded(r.Context(), userID, res.Products, res.Listings, res.ObservedSales); nerr != nil {
			h.logger.WarnContext(r.Context(), "demo notification failed",
				slog.String("error", nerr.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"inserted": res})
}
