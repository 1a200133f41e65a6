package service

import (
	"fmt"
	"time"

	"github.com/cardops/emboss-services/internal/embosssvc/codec"
	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

// ExportService renders query results as downloadable workbooks. Card and
// account columns are written with a text cell format so spreadsheet tools
// never strip leading zeros or switch to scientific notation.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportBranch produces the per-branch download.
func (s *ExportService) ExportBranch(group models.BranchGroup) (string, []byte, error) {
	data, err := codec.EncodeXLSX(group.Rows)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("branch_%s_cards.xlsx", group.BranchCode), data, nil
}

// Export produces the unpartitioned download of a whole result, rows in
// grouped order, with a timestamped filename.
func (s *ExportService) Export(result *models.QueryResult, at time.Time) (string, []byte, error) {
	data, err := codec.EncodeXLSX(result.Rows())
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("cards_export_%s.xlsx", at.Format("20060102_150405")), data, nil
}
