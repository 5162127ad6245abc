package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/export"
	"github.com/davidalvarezc/flipradar/internal/store/memory"
)

type captureWriter struct {
	path        string
	contentType string
	data        []byte
	multipart   bool
}

func (cw *captureWriter) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	cw.path = path
	cw.contentType = contentType
	cw.data = buf
	return nil
}

func (cw *captureWriter) PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64, contentType string) error {
	cw.multipart = true
	return cw.Put(ctx, path, data, contentType)
}

func seedOpportunities(t *testing.T, store *memory.OpportunityStore) {
	t.Helper()
	ctx := context.Background()
	rows := []domain.Opportunity{
		{
			UserID:             "owner-1",
			BuyListingID:       "lst-1",
			SellPlatform:       domain.PlatformEbay,
			ProductID:          "prd-1",
			EstSellPrice:       180,
			NetMargin:          46.4,
			ROI:                0.4218,
			BreakevenSellPrice: 127.27,
			EstDaysToSell:      30,
			DemandScore:        12.5,
			LiquidityScore:     12.5,
			TotalScore:         58.92,
			UpdatedAt:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			UserID:             "owner-1",
			BuyListingID:       "lst-2",
			SellPlatform:       domain.PlatformEbay,
			ProductID:          "prd-2",
			EstSellPrice:       95,
			NetMargin:          20.3,
			ROI:                0.21,
			BreakevenSellPrice: 80.5,
			EstDaysToSell:      45,
			DemandScore:        12.5,
			LiquidityScore:     6.25,
			TotalScore:         40.1,
			UpdatedAt:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
	for _, o := range rows {
		require.NoError(t, store.Upsert(ctx, o))
	}
}

func newSnapshotter(store *memory.OpportunityStore, cw *captureWriter) *export.Snapshotter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return export.NewSnapshotter(store, cw, logger)
}

func TestExportJSON(t *testing.T) {
	store := memory.NewOpportunityStore()
	seedOpportunities(t, store)
	cw := &captureWriter{}

	res, err := newSnapshotter(store, cw).Export(context.Background(), "owner-1", export.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Equal(t, res.Path, cw.path)
	assert.Contains(t, cw.path, "exports/owner-1/")
	assert.Contains(t, cw.path, ".json")
	assert.Equal(t, "application/json", cw.contentType)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(cw.data, &rows))
	require.Len(t, rows, 2)

	// Rows come back ordered by total score descending.
	assert.Equal(t, "lst-1", rows[0]["buy_listing_id"])
	assert.Equal(t, "ebay", rows[0]["sell_platform"])
	assert.InDelta(t, 58.92, rows[0]["total_score"].(float64), 1e-9)
	assert.Equal(t, "lst-2", rows[1]["buy_listing_id"])
}

func TestExportCSV(t *testing.T) {
	store := memory.NewOpportunityStore()
	seedOpportunities(t, store)
	cw := &captureWriter{}

	res, err := newSnapshotter(store, cw).Export(context.Background(), "owner-1", export.FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	assert.Contains(t, cw.path, ".csv")
	assert.Equal(t, "text/csv", cw.contentType)

	records, err := csv.NewReader(bytes.NewReader(cw.data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "buy_listing_id", records[0][0])
	assert.Equal(t, "lst-1", records[1][0])
	assert.Equal(t, "180", records[1][3])
	assert.Equal(t, "30", records[1][7])
	assert.Equal(t, "false", records[1][9])
}

func TestExportEmptyUser(t *testing.T) {
	store := memory.NewOpportunityStore()
	cw := &captureWriter{}

	res, err := newSnapshotter(store, cw).Export(context.Background(), "owner-empty", export.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(cw.data, &rows))
	assert.Empty(t, rows)
}

func TestExportUnsupportedFormat(t *testing.T) {
	store := memory.NewOpportunityStore()
	cw := &captureWriter{}

	_, err := newSnapshotter(store, cw).Export(context.Background(), "owner-1", export.Format("xml"))
	require.Error(t, err)
	assert.Empty(t, cw.path)
}
