package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

const sheetName = "Sheet1"

// numFmtText is the built-in "@" number format; card and account columns are
// written with it so spreadsheet tools never reinterpret them numerically.
const numFmtText = 49

func openFirstSheet(raw []byte) (*excelize.File, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, rows, nil
}

// cell returns row[i] tolerating the ragged rows excelize produces when
// trailing cells are empty.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func decodeUploadXLSX(raw []byte) (*Batch, error) {
	f, rows, err := openFirstSheet(raw)
	if err != nil {
		return nil, &models.DecodeError{Format: FormatXLSX, Err: err}
	}
	defer f.Close()

	if len(rows) == 0 {
		return nil, &models.DecodeError{Format: FormatXLSX, Err: errors.New("sheet has no header row")}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	idx := headerIndex(headers)

	batch := &Batch{Headers: headers}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		batch.Rows = append(batch.Rows, BatchRow{
			CardNumber:    cell(row, at(idx, models.ColCardNumber)),
			AccountNumber: cell(row, at(idx, models.ColAccountNumber)),
			CustomerName:  cell(row, at(idx, models.ColCustomerName)),
			IssuanceDate:  cell(row, at(idx, models.ColIssuanceDate)),
			BranchCode:    cell(row, at(idx, models.ColBranchCode)),
		})
	}
	return batch, nil
}

func at(idx map[string]int, name string) int {
	if i, ok := idx[name]; ok {
		return i
	}
	return -1
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// EncodeXLSX writes records as a single-sheet workbook: header row, then data
// rows in the given order, columns A and B forced to text format.
func EncodeXLSX(records []models.CardRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(models.ExportColumns))
	for i, name := range models.ExportColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmtText})
	if err != nil {
		return nil, err
	}
	if err := f.SetColStyle(sheetName, "A:B", style); err != nil {
		return nil, err
	}

	for i, rec := range records {
		row := []interface{}{
			rec.CardNumber,
			rec.AccountNumber,
			rec.CustomerName,
			rec.IssuanceDate.String(),
			rec.BranchCode,
			rec.LoadDate.String(),
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTableXLSX(raw []byte) ([]models.CardRecord, error) {
	f, rows, err := openFirstSheet(raw)
	if err != nil {
		return nil, &models.DecodeError{Format: FormatXLSX, Err: err}
	}
	defer f.Close()

	if len(rows) == 0 {
		return nil, nil
	}
	idx := headerIndex(rows[0])

	var records []models.CardRecord
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		var rec models.CardRecord
		rec.CardNumber = cell(row, at(idx, models.ColCardNumber))
		rec.AccountNumber = cell(row, at(idx, models.ColAccountNumber))
		rec.CustomerName = cell(row, at(idx, models.ColCustomerName))
		rec.BranchCode = cell(row, at(idx, models.ColBranchCode))
		if err := rec.IssuanceDate.UnmarshalCSV([]byte(cell(row, at(idx, models.ColIssuanceDate)))); err != nil {
			return nil, &models.DecodeError{Format: FormatXLSX, Err: err}
		}
		if err := rec.LoadDate.UnmarshalCSV([]byte(cell(row, at(idx, models.ColLoadDate)))); err != nil {
			return nil, &models.DecodeError{Format: FormatXLSX, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}
