package export

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidalvarezc/flipradar/internal/domain"
	"github.com/davidalvarezc/flipradar/internal/store/memory"
)

type uploadModeWriter struct {
	multipart bool
	single    bool
}

func (w *uploadModeWriter) Put(_ context.Context, _ string, data io.Reader, _ string) error {
	w.single = true
	_, err := io.Copy(io.Discard, data)
	return err
}

func (w *uploadModeWriter) PutMultipart(_ context.Context, _ string, data io.Reader, _ int64, _ string) error {
	w.multipart = true
	_, err := io.Copy(io.Discard, data)
	return err
}

func TestExportSwitchesToMultipartAboveThreshold(t *testing.T) {
	store := memory.NewOpportunityStore()
	err := store.Upsert(context.Background(), domain.Opportunity{
		UserID: "owner-1", BuyListingID: "lst-1", SellPlatform: domain.PlatformEbay, ProductID: "prd-1", TotalScore: 50,
	})
	require.NoError(t, err)

	writer := &uploadModeWriter{}
	s := NewSnapshotter(store, writer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.multipartAt = 1

	_, err = s.Export(context.Background(), "owner-1", FormatJSON)
	require.NoError(t, err)
	assert.True(t, writer.multipart)
	assert.False(t, writer.single)
}

func TestExportUsesSingleUploadBelowThreshold(t *testing.T) {
	store := memory.NewOpportunityStore()
	err := store.Upsert(context.Background(), domain.Opportunity{
		UserID: "owner-1", BuyListingID: "lst-1", SellPlatform: domain.PlatformEbay, ProductID: "prd-1", TotalScore: 50,
	})
	require.NoError(t, err)

	writer := &uploadModeWriter{}
	s := NewSnapshotter(store, writer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = s.Export(context.Background(), "owner-1", FormatCSV)
	require.NoError(t, err)
	assert.True(t, writer.single)
	assert.False(t, writer.multipart)
}
