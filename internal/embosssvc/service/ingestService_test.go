package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardops/emboss-services/internal/embosssvc/dateparse"
	"github.com/cardops/emboss-services/internal/embosssvc/models"
	"github.com/cardops/emboss-services/internal/embosssvc/store"
)

var adminScope = models.RequesterScope{UserID: "admin_user", Role: models.RoleAdmin}

func newIngestFixture(t *testing.T) (*IngestService, *store.MasterStore) {
	t.Helper()
	master := store.NewMasterStore(filepath.Join(t.TempDir(), "master_data.csv"))
	svc := NewIngestService(master, dateparse.DayFirst)
	svc.now = func() time.Time { return time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC) }
	return svc, master
}

func uploadCSV(rows ...string) []byte {
	lines := append([]string{
		"Unmasked Card Number,Account Number,Customer Name,Issuance Date,Delivery Branch Code",
	}, rows...)
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestIngestCreatesMasterSnapshot(t *testing.T) {
	svc, master := newIngestFixture(t)

	result, err := svc.Ingest(context.Background(), uploadCSV(
		`0042,007,Ali,01/02/2024, 101 `,
		`5222,2,Sara,02/02/2024,102`,
	), "daily.csv", adminScope)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SubmittedRows)
	assert.Equal(t, 2, result.RetainedRows)
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 0, result.UnparseableDates)
	assert.Equal(t, "2024-03-15", result.LoadDate.String())
	assert.NotEmpty(t, result.BatchID)

	rows, err := master.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Identifiers stay opaque text and the branch code is trimmed.
	assert.Equal(t, "0042", rows[0].CardNumber)
	assert.Equal(t, "007", rows[0].AccountNumber)
	assert.Equal(t, "101", rows[0].BranchCode)
	assert.Equal(t, "2024-02-01", rows[0].IssuanceDate.String())
	assert.Equal(t, "2024-03-15", rows[0].LoadDate.String())
}

func TestReingestIsIdempotent(t *testing.T) {
	svc, _ := newIngestFixture(t)
	batch := uploadCSV(
		`4111,1,Ali,01/02/2024,101`,
		`5222,2,Sara,03/02/2024,102`,
	)

	first, err := svc.Ingest(context.Background(), batch, "daily.csv", adminScope)
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), batch, "daily.csv", adminScope)
	require.NoError(t, err)

	assert.Equal(t, first.TotalRows, second.TotalRows)
	assert.Equal(t, 2, second.TotalRows)
}

func TestNewUploadWinsOnKeyCollision(t *testing.T) {
	svc, master := newIngestFixture(t)

	_, err := svc.Ingest(context.Background(), uploadCSV(`4111,1,Ali,01/02/2024,101`), "a.csv", adminScope)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), uploadCSV(`4111,1,Ali Updated,02/02/2024,101`), "b.csv", adminScope)
	require.NoError(t, err)

	rows, err := master.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ali Updated", rows[0].CustomerName)
	assert.Equal(t, "2024-02-02", rows[0].IssuanceDate.String())
}

func TestDedupKeyIncludesBranch(t *testing.T) {
	svc, master := newIngestFixture(t)

	_, err := svc.Ingest(context.Background(), uploadCSV(
		`4111,1,Ali,01/02/2024,101`,
		`4111,1,Ali,01/02/2024,102`,
	), "a.csv", adminScope)
	require.NoError(t, err)

	rows, err := master.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestIntraBatchDuplicatesCollapse(t *testing.T) {
	svc, _ := newIngestFixture(t)

	result, err := svc.Ingest(context.Background(), uploadCSV(
		`4111,1,Ali,01/02/2024,101`,
		`4111,1,Ali Fixed,01/02/2024,101`,
	), "a.csv", adminScope)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SubmittedRows)
	assert.Equal(t, 1, result.RetainedRows)
	assert.Equal(t, 1, result.TotalRows)
}

func TestMissingColumnsRejectWholeBatch(t *testing.T) {
	svc, master := newIngestFixture(t)

	// Seed one good batch so we can verify the bad one mutates nothing.
	_, err := svc.Ingest(context.Background(), uploadCSV(`4111,1,Ali,01/02/2024,101`), "a.csv", adminScope)
	require.NoError(t, err)
	before, err := os.ReadFile(master.Path())
	require.NoError(t, err)

	bad := []byte("Unmasked Card Number,Account Number\n5222,2\n")
	_, err = svc.Ingest(context.Background(), bad, "b.csv", adminScope)

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{
		models.ColCustomerName,
		models.ColIssuanceDate,
		models.ColBranchCode,
	}, validationErr.MissingColumns)

	after, err := os.ReadFile(master.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "master snapshot must be byte-for-byte unchanged")
}

func TestHeaderWhitespaceIsTolerated(t *testing.T) {
	svc, _ := newIngestFixture(t)

	raw := []byte(" Unmasked Card Number , Account Number ,Customer Name,Issuance Date,Delivery Branch Code \n4111,1,Ali,01/02/2024,101\n")
	result, err := svc.Ingest(context.Background(), raw, "padded.csv", adminScope)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalRows)
}

func TestUnparseableDatesAreCountedNotDropped(t *testing.T) {
	svc, master := newIngestFixture(t)

	result, err := svc.Ingest(context.Background(), uploadCSV(
		`4111,1,Ali,01/02/2024,101`,
		`5222,2,Sara,not-a-date,102`,
	), "a.csv", adminScope)
	require.NoError(t, err)

	assert.Equal(t, 1, result.UnparseableDates)
	assert.Equal(t, 2, result.TotalRows)

	rows, err := master.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[1].IssuanceDate.Valid)
	assert.Equal(t, "not-a-date", rows[1].IssuanceDate.Raw)
}

func TestUnknownFormatIsRejected(t *testing.T) {
	svc, master := newIngestFixture(t)

	_, err := svc.Ingest(context.Background(), []byte("whatever"), "cards.pdf", adminScope)

	var decodeErr *models.DecodeError
	require.ErrorAs(t, err, &decodeErr)

	_, statErr := os.Stat(master.Path())
	assert.True(t, os.IsNotExist(statErr), "no snapshot may be created for a rejected upload")
}

func TestMalformedWorkbookIsRejected(t *testing.T) {
	svc, _ := newIngestFixture(t)

	_, err := svc.Ingest(context.Background(), []byte("this is not a zip archive"), "cards.xlsx", adminScope)

	var decodeErr *models.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestEndToEndScenario(t *testing.T) {
	svc, master := newIngestFixture(t)
	queries := NewQueryService(master)

	_, err := svc.Ingest(context.Background(), uploadCSV(`4111,1,Ali,01/02/2024,101`), "a.csv", adminScope)
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), uploadCSV(
		`4111,1,Ali Updated,02/02/2024,101`,
		`5222,2,Sara,not-a-date,102`,
	), "b.csv", adminScope)
	require.NoError(t, err)

	rows, err := master.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byKey := map[models.DedupKey]models.CardRecord{}
	for _, r := range rows {
		byKey[r.Key()] = r
	}
	updated := byKey[models.DedupKey{Card: "4111", Account: "1", Branch: "101"}]
	assert.Equal(t, "Ali Updated", updated.CustomerName)
	assert.Equal(t, "2024-02-02", updated.IssuanceDate.String())
	assert.False(t, byKey[models.DedupKey{Card: "5222", Account: "2", Branch: "102"}].IssuanceDate.Valid)

	from := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
	result, err := queries.Query(context.Background(),
		models.QueryCriteria{DateFrom: &from, DateTo: &to}, adminScope)
	require.NoError(t, err)

	require.Equal(t, 1, result.Total)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "101", result.Groups[0].BranchCode)
	assert.Equal(t, "Ali Updated", result.Groups[0].Rows[0].CustomerName)
}
