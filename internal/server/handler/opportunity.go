package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/engine"
	"github.com/davidalvarezc/flipradar/internal/export"
)

// SnapshotExporter is the slice of the export package the opportunity
// handler needs.
type SnapshotExporter interface {
	Export(ctx context.Context, userID string, format export.Format) (export.Result, error)
}

// OpportunityHandler serves the scored opportunity listing and export
// endpoints.
type OpportunityHandler struct {
	opps     domain.OpportunityStore
	products domain.ProductStore
	exporter SnapshotExporter  // nil when exports are disabled
	blobs    domain.BlobReader // nil when exports are disabled
	notifier Notifier          // nil disables notifications
	logger   *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler. exporter and blobs may
// be nil; the export endpoints then respond 503. notifier may be nil.
func NewOpportunityHandler(opps domain.OpportunityStore, products domain.ProductStore, exporter SnapshotExporter, blobs domain.BlobReader, notifier Notifier, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		opps:     opps,
		products: products,
		exporter: exporter,
		blobs:    blobs,
		notifier: notifier,
		logger:   logHandler(logger, "opportunity"),
	}
}

// opportunityOut is the JSON shape of one scored opportunity, enriched with
// a ready-to-open search URL on the sell platform.
type opportunityOut struct {
	BuyListingID       string  `json:"buy_listing_id"`
	SellPlatform       string  `json:"sell_platform"`
	ProductID          string  `json:"product_id"`
	ProductName        string  `json:"product_name,omitempty"`
	EstSellPrice       float64 `json:"est_sell_price"`
	NetMargin          float64 `json:"net_margin"`
	ROI                float64 `json:"roi"`
	BreakevenSellPrice float64 `json:"breakeven_sell_price"`
	EstDaysToSell      int     `json:"est_days_to_sell"`
	DemandScore        float64 `json:"demand_score"`
	LiquidityScore     float64 `json:"liquidity_score"`
	TotalScore         float64 `json:"total_score"`
	SellSearchURL      string  `json:"sell_search_url,omitempty"`
	IsDemo             bool    `json:"is_demo"`
	UpdatedAt          string  `json:"updated_at"`
}

// ListOpportunities returns the owner's opportunities ordered by score.
// GET /api/opportunities?include_demo=false&limit=200
func (h *OpportunityHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	includeDemo := queryBool(r, "include_demo", false)
	limit := queryInt(r, "limit", 200)

	opps, err := h.opps.ListByUser(r.Context(), owner(r), includeDemo, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	// Product names are looked up once per distinct product; they seed the
	// sell-side search URLs.
	names := make(map[string]string)
	out := make([]opportunityOut, 0, len(opps))
	for _, o := range opps {
		name, ok := names[o.ProductID]
		if !ok {
			product, err := h.products.GetByID(r.Context(), owner(r), o.ProductID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				h.logger.ErrorContext(r.Context(), "product lookup failed",
					slog.String("product_id", o.ProductID),
					slog.String("error", err.Error()),
				)
				writeError(w, http.StatusInternalServerError, "failed to list opportunities")
				return
			}
			name = product.CanonicalName
			names[o.ProductID] = name
		}

		row := opportunityOut{
			BuyListingID:       o.BuyListingID,
			SellPlatform:       string(o.SellPlatform),
			ProductID:          o.ProductID,
			ProductName:        name,
			EstSellPrice:       o.EstSellPrice,
			NetMargin:          o.NetMargin,
			ROI:                o.ROI,
			BreakevenSellPrice: o.BreakevenSellPrice,
			EstDaysToSell:      o.EstDaysToSell,
			DemandScore:        o.DemandScore,
			LiquidityScore:     o.LiquidityScore,
			TotalScore:         o.TotalScore,
			IsDemo:             o.IsDemo,
			UpdatedAt:          o.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if name != "" {
			row.SellSearchURL = engine.SellSearchURL(o.SellPlatform, name)
		}
		out = append(out, row)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": out,
		"total":         len(out),
	})
}

// exportIn is the JSON body of an export request.
type exportIn struct {
	Format string `json:"format"`
}

// ExportOpportunities uploads a snapshot of the owner's opportunities to
// blob storage.
// POST /api/opportunities/export
func (h *OpportunityHandler) ExportOpportunities(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	in := exportIn{Format: string(export.FormatJSON)}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	format := export.Format(in.Format)
	if !format.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "format must be json or csv")
		return
	}

	userID := owner(r)
	res, err := h.exporter.Export(r.Context(), userID, format)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	if h.notifier != nil {
		if nerr := h.notifier.ExportCompleted(r.Context(), userID, res.Path, res.Count); nerr != nil {
			h.logger.WarnContext(r.Context(), "export notification failed",
				slog.String("error", nerr.Error()),
			)
		}
	}

	writeJSON(w, http.StatusOK, res)
}

// exportOut is the JSON shape of one stored snapshot.
type exportOut struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// ListExports returns the owner's previously uploaded snapshots.
// GET /api/opportunities/exports
func (h *OpportunityHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	prefix := exportPrefix(owner(r))
	infos, err := h.blobs.List(r.Context(), prefix)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list exports failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list exports")
		return
	}

	out := make([]exportOut, 0, len(infos))
	for _, info := range infos {
		out = append(out, exportOut{
			Name:         strings.TrimPrefix(info.Path, prefix),
			Path:         info.Path,
			Size:         info.Size,
			LastModified: info.LastModified.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"exports": out,
		"total":   len(out),
	})
}

// DownloadExport streams one stored snapshot back to the caller. The name
// path segment is the object name under the owner's export prefix.
// GET /api/opportunities/exports/{name}
func (h *OpportunityHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are not configured")
		return
	}

	name := r.PathValue("name")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		writeError(w, http.StatusUnprocessableEntity, "invalid export name")
		return
	}

	body, err := h.blobs.Get(r.Context(), exportPrefix(owner(r))+name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "export not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "download export failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to download export")
		return
	}
	defer body.Close()

	contentType := "application/json"
	if strings.HasSuffix(name, ".csv") {
		contentType = "text/csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "export stream interrupted",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}

// exportPrefix is the object-storage prefix all of a user's snapshots live
// under. It matches the path layout the snapshotter writes.
func exportPrefix(userID string) string {
	return "exports/" + userID + "/"
}
