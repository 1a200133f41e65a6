package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
	"github.com/cardops/emboss-services/internal/embosssvc/store"
)

func rec(card, acct, name, issued, branch string) models.CardRecord {
	r := models.CardRecord{
		CardNumber:    card,
		AccountNumber: acct,
		CustomerName:  name,
		BranchCode:    branch,
		LoadDate:      models.NewDate(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)),
	}
	// ISO values parse, anything else becomes an unparseable marker.
	_ = r.IssuanceDate.UnmarshalCSV([]byte(issued))
	return r
}

func seededQueryService(t *testing.T, rows ...models.CardRecord) *QueryService {
	t.Helper()
	master := store.NewMasterStore(filepath.Join(t.TempDir(), "master_data.csv"))
	_, err := master.Update(context.Background(), func(existing []models.CardRecord) []models.CardRecord {
		return append(existing, rows...)
	})
	require.NoError(t, err)
	return NewQueryService(master)
}

func groupCodes(result *models.QueryResult) []string {
	codes := make([]string, 0, len(result.Groups))
	for _, g := range result.Groups {
		codes = append(codes, g.BranchCode)
	}
	return codes
}

func TestBranchCodesOrderedAsStrings(t *testing.T) {
	svc := seededQueryService(t,
		rec("1", "1", "A", "2024-01-01", "9"),
		rec("2", "2", "B", "2024-01-01", "10"),
		rec("3", "3", "C", "2024-01-01", "09"),
	)

	result, err := svc.Query(context.Background(), models.QueryCriteria{}, adminScope)
	require.NoError(t, err)

	assert.Equal(t, []string{"09", "10", "9"}, groupCodes(result))
}

func TestTextFilterIsCaseInsensitiveAcrossFields(t *testing.T) {
	svc := seededQueryService(t,
		rec("4111", "1", "Ali Hassan", "2024-01-01", "101"),
		rec("5222", "2", "Sara", "2024-01-01", "101"),
		rec("6333", "99ali1", "Omar", "2024-01-01", "102"),
	)

	result, err := svc.Query(context.Background(), models.QueryCriteria{Text: "ALI"}, adminScope)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	result, err = svc.Query(context.Background(), models.QueryCriteria{Text: "5222"}, adminScope)
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Sara", result.Groups[0].Rows[0].CustomerName)
}

func TestDateBoundsExcludeUnparseableRows(t *testing.T) {
	svc := seededQueryService(t,
		rec("4111", "1", "Ali", "2024-02-02", "101"),
		rec("5222", "2", "Sara", "not-a-date", "102"),
	)

	// Unbounded queries still include the unparseable row.
	result, err := svc.Query(context.Background(), models.QueryCriteria{}, adminScope)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	result, err = svc.Query(context.Background(), models.QueryCriteria{DateFrom: &from}, adminScope)
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "101", result.Groups[0].BranchCode)
}

func TestDateBoundsAreInclusive(t *testing.T) {
	svc := seededQueryService(t,
		rec("1", "1", "A", "2024-02-01", "101"),
		rec("2", "2", "B", "2024-02-28", "101"),
		rec("3", "3", "C", "2024-03-01", "101"),
	)

	from := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
	result, err := svc.Query(context.Background(), models.QueryCriteria{DateFrom: &from, DateTo: &to}, adminScope)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestViewerScopeForcesOwnBranch(t *testing.T) {
	svc := seededQueryService(t,
		rec("4111", "1", "Ali", "2024-01-01", "101"),
		rec("5222", "2", "Sara", "2024-01-01", "102"),
	)
	viewer := models.RequesterScope{UserID: "viewer1", Role: models.RoleViewer, Branch: "101"}

	result, err := svc.Query(context.Background(),
		models.QueryCriteria{Branches: []string{"101", "102"}}, viewer)
	require.NoError(t, err)

	require.Equal(t, 1, result.Total)
	assert.Equal(t, []string{"101"}, groupCodes(result))
}

func TestViewerCannotSelectForeignBranch(t *testing.T) {
	svc := seededQueryService(t,
		rec("4111", "1", "Ali", "2024-01-01", "101"),
		rec("5222", "2", "Sara", "2024-01-01", "102"),
	)
	viewer := models.RequesterScope{UserID: "viewer1", Role: models.RoleViewer, Branch: "101"}

	result, err := svc.Query(context.Background(),
		models.QueryCriteria{Branches: []string{"102"}}, viewer)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Groups)
}

func TestSupervisorSeesAllBranches(t *testing.T) {
	svc := seededQueryService(t,
		rec("4111", "1", "Ali", "2024-01-01", "101"),
		rec("5222", "2", "Sara", "2024-01-01", "102"),
	)
	supervisor := models.RequesterScope{UserID: "sup1", Role: models.RoleSupervisor, Branch: "101"}

	result, err := svc.Query(context.Background(), models.QueryCriteria{}, supervisor)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestSummaryDropsRowPayloads(t *testing.T) {
	svc := seededQueryService(t,
		rec("4111", "1", "Ali", "2024-01-01", "101"),
		rec("5222", "2", "Sara", "2024-01-01", "101"),
		rec("6333", "3", "Omar", "2024-01-01", "102"),
	)

	result, err := svc.Summary(context.Background(), models.QueryCriteria{}, adminScope)
	require.NoError(t, err)

	require.Len(t, result.Groups, 2)
	assert.Equal(t, 2, result.Groups[0].Count)
	assert.Equal(t, 1, result.Groups[1].Count)
	for _, g := range result.Groups {
		assert.Nil(t, g.Rows)
	}
}
