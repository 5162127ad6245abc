package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// ProductResolver is the slice of the engine the listing handler needs: it
// ties a freshly imported listing to its canonical product.
type ProductResolver interface {
	ResolveProduct(ctx context.Context, l domain.Listing) (domain.Product, error)
}

// ListingHandler serves listing import and query endpoints.
type ListingHandler struct {
	listings domain.ListingStore
	resolver ProductResolver
	logger   *slog.Logger
}

// NewListingHandler creates a ListingHandler.
func NewListingHandler(listings domain.ListingStore, resolver ProductResolver, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		resolver: resolver,
		logger:   logHandler(logger, "listing"),
	}
}

// listingIn is the JSON body of one imported listing.
type listingIn struct {
	Platform      string   `json:"platform"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	ShippingPrice *float64 `json:"shipping_price"`
	Category      string   `json:"category"`
	Condition     string   `json:"condition"`
	Location      string   `json:"location"`
	Images        []string `json:"images"`
	IsDemo        bool     `json:"is_demo"`
}

// toDomain converts the payload to a domain listing owned by userID,
// applying the same defaults the original importer used.
func (in listingIn) toDomain(userID string) domain.Listing {
	currency := in.Currency
	if currency == "" {
		currency = "EUR"
	}
	condition := domain.Condition(in.Condition)
	if in.Condition == "" {
		condition = domain.ConditionUnknown
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	return domain.Listing{
		UserID:        userID,
		Platform:      domain.Platform(in.Platform),
		URL:           in.URL,
		Title:         in.Title,
		Price:         in.Price,
		Currency:      currency,
		ShippingPrice: in.ShippingPrice,
		Category:      in.Category,
		Condition:     condition,
		Location:      in.Location,
		Images:        images,
		IsDemo:        in.IsDemo,
	}
}

// listingOut is the JSON shape of a persisted listing.
type listingOut struct {
	ID            string   `json:"id"`
	Platform      string   `json:"platform"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	ShippingPrice *float64 `json:"shipping_price,omitempty"`
	Category      string   `json:"category,omitempty"`
	Condition     string   `json:"condition"`
	Location      string   `json:"location,omitempty"`
	Images        []string `json:"images"`
	IsDemo        bool     `json:"is_demo"`
	ImportedAt    string   `json:"imported_at"`
	ProductID     string   `json:"product_id,omitempty"`
}

func toListingOut(l domain.Listing, productID string) listingOut {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return listingOut{
		ID:            l.ID,
		Platform:      string(l.Platform),
		URL:           l.URL,
		Title:         l.Title,
		Price:         l.Price,
		Currency:      l.Currency,
		ShippingPrice: l.ShippingPrice,
		Category:      l.Category,
		Condition:     string(l.Condition),
		Location:      l.Location,
		Images:        images,
		IsDemo:        l.IsDemo,
		ImportedAt:    l.ImportedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		ProductID:     productID,
	}
}

// ImportListing upserts a single listing and resolves its canonical product.
// POST /api/listings
func (h *ListingHandler) ImportListing(w http.ResponseWriter, r *http.Request) {
	var in listingIn
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, ok := h.importOne(w, r, in)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// batchResponse wraps the batch import output.
type batchResponse struct {
	Imported []listingOut `json:"imported"`
	Rejected int          `json:"rejected"`
}

// ImportBatch upserts a batch of listings, skipping rows that fail the
// importability check instead of failing the whole request.
// POST /api/listings/batch
func (h *ListingHandler) ImportBatch(w http.ResponseWriter, r *http.Request) {
	var ins []listingIn
	if err := decodeJSON(w, r, &ins); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(ins) == 0 {
		writeError(w, http.StatusBadRequest, "empty batch")
		return
	}

	resp := batchResponse{Imported: []listingOut{}}
	for _, in := range ins {
		l := in.toDomain(owner(r))
		if !l.Importable() {
			resp.Rejected++
			continue
		}

		persisted, err := h.listings.Upsert(r.Context(), l)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "batch upsert failed",
				slog.String("url", l.URL),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to import listings")
			return
		}

		product, err := h.resolver.ResolveProduct(r.Context(), persisted)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "batch resolve failed",
				slog.String("listing_id", persisted.ID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to resolve product")
			return
		}
		resp.Imported = append(resp.Imported, toListingOut(persisted, product.ID))
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListListings returns the owner's listings, most recently imported first.
// GET /api/listings?platform=wallapop&include_demo=false&limit=50
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	filter := domain.ListingFilter{
		IncludeDemo: queryBool(r, "include_demo", false),
		Limit:       queryInt(r, "limit", 50),
	}
	if p := r.URL.Query().Get("platform"); p != "" {
		plat := domain.Platform(p)
		if !plat.Valid() {
			writeError(w, http.StatusBadRequest, "unknown platform "+p)
			return
		}
		filter.Platforms = []domain.Platform{plat}
	}

	listings, err := h.listings.ListRecent(r.Context(), owner(r), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list listings failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	out := make([]listingOut, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingOut(l, ""))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"listings": out,
		"total":    len(out),
	})
}

// importOne validates, persists, and resolves a single listing. It writes
// the error response itself and reports success through ok.
func (h *ListingHandler) importOne(w http.ResponseWriter, r *http.Request, in listingIn) (listingOut, bool) {
	l := in.toDomain(owner(r))
	if !l.Importable() {
		writeError(w, http.StatusUnprocessableEntity, "listing must carry platform, url, title, and a positive price")
		return listingOut{}, false
	}

	persisted, err := h.listings.Upsert(r.Context(), l)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "upsert listing failed",
			slog.String("url", l.URL),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to import listing")
		return listingOut{}, false
	}

	product, err := h.resolver.ResolveProduct(r.Context(), persisted)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "resolve product failed",
			slog.String("listing_id", persisted.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to resolve product")
		return listingOut{}, false
	}

	return toListingOut(persisted, product.ID), true
}
