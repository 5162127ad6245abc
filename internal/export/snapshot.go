// Package export builds point-in-time snapshots of a user's scored
// opportunities and uploads them to blob storage as JSON or CSV.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/davidalvarezc/flipradar/internal/domain"
)

// Format selects the snapshot serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatJSON || f == FormatCSV
}

// multipartThreshold is the serialized size above which a snapshot goes
// through the multipart upload path.
const multipartThreshold = 8 << 20

// Snapshotter serializes opportunity listings and uploads them under
// exports/{user}/{timestamp}.{ext}.
type Snapshotter struct {
	opps   domain.OpportunityStore
	writer domain.BlobWriter
	logger *slog.Logger

	// now and multipartAt are swappable for tests.
	now         func() time.Time
	multipartAt int
}

// NewSnapshotter creates a Snapshotter over the given store and writer.
func NewSnapshotter(opps domain.OpportunityStore, writer domain.BlobWriter, logger *slog.Logger) *Snapshotter {
	return &Snapshotter{
		opps:        opps,
		writer:      writer,
		logger:      logger,
		now:         time.Now,
		multipartAt: multipartThreshold,
	}
}

// Result describes a completed snapshot upload.
type Result struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// snapshotRow is the JSON shape of one exported opportunity.
type snapshotRow struct {
	BuyListingID       string  `json:"buy_listing_id"`
	SellPlatform       string  `json:"sell_platform"`
	ProductID          string  `json:"product_id"`
	EstSellPrice       float64 `json:"est_sell_price"`
	NetMargin          float64 `json:"net_margin"`
	ROI                float64 `json:"roi"`
	BreakevenSellPrice float64 `json:"breakeven_sell_price"`
	EstDaysToSell      int     `json:"est_days_to_sell"`
	TotalScore         float64 `json:"total_score"`
	IsDemo             bool    `json:"is_demo"`
	UpdatedAt          string  `json:"updated_at"`
}

// Export reads the user's opportunities ordered by score, serializes them in
// the requested format, and uploads the result. The object path embeds the
// upload time so successive exports never collide.
func (s *Snapshotter) Export(ctx context.Context, userID string, format Format) (Result, error) {
	if !format.Valid() {
		return Result{}, fmt.Errorf("export: unsupported format %q", format)
	}

	opps, err := s.opps.ListByUser(ctx, userID, true, 0)
	if err != nil {
		return Result{}, fmt.Errorf("export: list opportunities: %w", err)
	}

	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case FormatCSV:
		contentType = "text/csv"
		if err := writeCSV(&buf, opps); err != nil {
			return Result{}, err
		}
	default:
		contentType = "application/json"
		if err := writeJSON(&buf, opps); err != nil {
			return Result{}, err
		}
	}

	path := fmt.Sprintf("exports/%s/%s.%s", userID, s.now().UTC().Format("20060102T150405Z"), format)
	if buf.Len() >= s.multipartAt {
		err = s.writer.PutMultipart(ctx, path, &buf, 0, contentType)
	} else {
		err = s.writer.Put(ctx, path, &buf, contentType)
	}
	if err != nil {
		return Result{}, fmt.Errorf("export: upload snapshot: %w", err)
	}

	s.logger.Info("snapshot exported",
		slog.String("user_id", userID),
		slog.String("path", path),
		slog.Int("count", len(opps)),
	)
	return Result{Path: path, Count: len(opps)}, nil
}

func writeJSON(buf *bytes.Buffer, opps []domain.Opportunity) error {
	rows := make([]snapshotRow, 0, len(opps))
	for _, o := range opps {
		rows = append(rows, snapshotRow{
			BuyListingID:       o.BuyListingID,
			SellPlatform:       string(o.SellPlatform),
			ProductID:          o.ProductID,
			EstSellPrice:       o.EstSellPrice,
			NetMargin:          o.NetMargin,
			ROI:                o.ROI,
			BreakevenSellPrice: o.BreakevenSellPrice,
			EstDaysToSell:      o.EstDaysToSell,
			TotalScore:         o.TotalScore,
			IsDemo:             o.IsDemo,
			UpdatedAt:          o.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"buy_listing_id", "sell_platform", "product_id", "est_sell_price",
	"net_margin", "roi", "breakeven_sell_price", "est_days_to_sell",
	"total_score", "is_demo", "updated_at",
}

func writeCSV(buf *bytes.Buffer, opps []domain.Opportunity) error {
	w := csv.NewWriter(buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, o := range opps {
		record := []string{
			o.BuyListingID,
			string(o.SellPlatform),
			o.ProductID,
			formatFloat(o.EstSellPrice),
			formatFloat(o.NetMargin),
			formatFloat(o.ROI),
			formatFloat(o.BreakevenSellPrice),
			strconv.Itoa(o.EstDaysToSell),
			formatFloat(o.TotalScore),
			strconv.FormatBool(o.IsDemo),
			o.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
