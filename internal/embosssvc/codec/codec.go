// Package codec converts uploaded spreadsheet bytes into rows of text cells
// and serializes master-table rows back out. Cell values are always handled
// as text so identifiers with leading zeros survive the round trip.
package codec

import (
	"path/filepath"
	"strings"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// BatchRow is one upload row mapped onto the upload schema, untouched text.
type BatchRow struct {
	CardNumber    string `csv:"Unmasked Card Number"`
	AccountNumber string `csv:"Account Number"`
	CustomerName  string `csv:"Customer Name"`
	IssuanceDate  string `csv:"Issuance Date"`
	BranchCode    string `csv:"Delivery Branch Code"`
}

// Batch is one decoded upload. Headers keep the file's own (trimmed) header
// row so validation can report exactly which required columns are absent.
type Batch struct {
	Headers []string
	Rows    []BatchRow
}

// formatFor maps a filename hint onto a supported format.
func formatFor(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatXLSX, nil
	default:
		return "", &models.DecodeError{
			Format: strings.TrimPrefix(filepath.Ext(filename), "."),
			Err:    errUnsupportedFormat,
		}
	}
}

// DecodeUpload parses raw upload bytes, dispatching on the filename
// extension hint. Malformed input comes back as *models.DecodeError.
func DecodeUpload(raw []byte, filename string) (*Batch, error) {
	format, err := formatFor(filename)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return decodeUploadCSV(raw)
	default:
		return decodeUploadXLSX(raw)
	}
}

// EncodeTable serializes master rows in the format implied by path.
func EncodeTable(records []models.CardRecord, path string) ([]byte, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV {
		return encodeTableCSV(records)
	}
	return EncodeXLSX(records)
}

// DecodeTable reads a persisted master snapshot back into records.
func DecodeTable(raw []byte, path string) ([]models.CardRecord, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV {
		return decodeTableCSV(raw)
	}
	return decodeTableXLSX(raw)
}
