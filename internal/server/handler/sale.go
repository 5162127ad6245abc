package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// SaleHandler serves observed-sale ingest and query endpoints.
type SaleHandler struct {
	sales     domain.ObservedSaleStore
	products  domain.ProductStore
	estimates domain.EstimateCache // optional
	logger    *slog.Logger
}

// NewSaleHandler creates a SaleHandler. estimates may be nil; cached
// sell-price estimates are then never invalidated on ingest.
func NewSaleHandler(sales domain.ObservedSaleStore, products domain.ProductStore, estimates domain.EstimateCache, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		sales:     sales,
		products:  products,
		estimates: estimates,
		logger:    logHandler(logger, "sale"),
	}
}

// saleIn is the JSON body of one observed sale. Either product_id or keyword
// may tie the sale to a product; with neither the sale is stored untied.
type saleIn struct {
	Platform  string  `json:"platform"`
	ProductID string  `json:"product_id"`
	Keyword   string  `json:"keyword"`
	SoldPrice float64 `json:"sold_price"`
	SoldAt    string  `json:"sold_at"` // YYYY-MM-DD
	Condition string  `json:"condition"`
	URL       string  `json:"url"`
	Notes     string  `json:"notes"`
	IsDemo    bool    `json:"is_demo"`
}

// saleOut is the JSON shape of a persisted sale.
type saleOut struct {
	ID        string  `json:"id"`
	Platform  string  `json:"platform"`
	ProductID string  `json:"product_id,omitempty"`
	SoldPrice float64 `json:"sold_price"`
	SoldAt    string  `json:"sold_at"`
	Condition string  `json:"condition"`
	URL       string  `json:"url,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	IsDemo    bool    `json:"is_demo"`
}

func toSaleOut(s domain.ObservedSale) saleOut {
	return saleOut{
		ID:        s.ID,
		Platform:  string(s.Platform),
		ProductID: s.ProductID,
		SoldPrice: s.SoldPrice,
		SoldAt:    s.SoldAt.UTC().Format("2006-01-02"),
		Condition: string(s.Condition),
		URL:       s.URL,
		Notes:     s.Notes,
		IsDemo:    s.IsDemo,
	}
}

// RecordSale ingests one observed sale.
// POST /api/sales
func (h *SaleHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var in saleIn
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	platform := domain.Platform(in.Platform)
	if !platform.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "unknown platform "+in.Platform)
		return
	}
	if in.SoldPrice <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "sold_price must be positive")
		return
	}
	soldAt, err := time.Parse("2006-01-02", in.SoldAt)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "sold_at must be a YYYY-MM-DD date")
		return
	}
	condition := domain.Condition(in.Condition)
	if in.Condition == "" {
		condition = domain.ConditionUnknown
	} else if !condition.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "unknown condition "+in.Condition)
		return
	}

	userID := owner(r)

	productID := in.ProductID
	if productID == "" && in.Keyword != "" {
		// Tie the sale to an existing product by canonical name. An unknown
		// keyword leaves the sale untied rather than creating a product from
		// evidence alone.
		product, err := h.products.GetByCanonicalName(r.Context(), userID, domain.CanonicalName(in.Keyword))
		switch {
		case err == nil:
			productID = product.ID
		case errors.Is(err, domain.ErrNotFound):
		default:
			h.logger.ErrorContext(r.Context(), "keyword lookup failed",
				slog.String("keyword", in.Keyword),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to resolve keyword")
			return
		}
	}
	if productID != "" && in.ProductID != "" {
		// Referenced products must exist and belong to the caller.
		if _, err := h.products.GetByID(r.Context(), userID, productID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusUnprocessableEntity, "product not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to verify product")
			return
		}
	}

	persisted, err := h.sales.Insert(r.Context(), domain.ObservedSale{
		UserID:    userID,
		Platform:  platform,
		ProductID: productID,
		SoldPrice: in.SoldPrice,
		SoldAt:    soldAt,
		Condition: condition,
		URL:       in.URL,
		Notes:     in.Notes,
		IsDemo:    in.IsDemo,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "insert sale failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to record sale")
		return
	}

	// New evidence supersedes any cached estimate for this key.
	if h.estimates != nil && productID != "" {
		if err := h.estimates.Invalidate(r.Context(), userID, productID, platform); err != nil {
			h.logger.WarnContext(r.Context(), "estimate invalidation failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	writeJSON(w, http.StatusCreated, toSaleOut(persisted))
}

// ListSales returns the owner's observed sales, most recent first.
// GET /api/sales?product_id=...&platform=ebay&include_demo=false&limit=50
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	filter := domain.SaleFilter{
		ProductID:   r.URL.Query().Get("product_id"),
		IncludeDemo: queryBool(r, "include_demo", false),
		Limit:       queryInt(r, "limit", 50),
	}
	if p := r.URL.Query().Get("platform"); p != "" {
		plat := domain.Platform(p)
		if !plat.Valid() {
			writeError(w, http.StatusBadRequest, "unknown platform "+p)
			return
		}
		filter.Platform = plat
	}

	sales, err := h.sales.ListRecent(r.Context(), owner(r), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list sales failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list sales")
		return
	}

	out := make([]saleOut, 0, len(sales))
	for _, s := range sales {
		out = append(out, toSaleOut(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sales": out,
		"total": len(out),
	})
}
