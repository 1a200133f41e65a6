package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

var errUnsupportedFormat = errors.New("unsupported spreadsheet format")

// readHeader pulls the header row off r, trims every cell and strips a
// leading UTF-8 BOM, the usual residue of spreadsheet tools saving CSV.
func readHeader(r *csv.Reader) ([]string, error) {
	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, nil
}

func decodeUploadCSV(raw []byte) (*Batch, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	header, err := readHeader(reader)
	if err != nil {
		return nil, &models.DecodeError{Format: FormatCSV, Err: err}
	}

	dec, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, &models.DecodeError{Format: FormatCSV, Err: err}
	}

	batch := &Batch{Headers: header}
	for {
		var row BatchRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, &models.DecodeError{Format: FormatCSV, Err: err}
		}
		batch.Rows = append(batch.Rows, row)
	}
	return batch, nil
}

func encodeTableCSV(records []models.CardRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeTableCSV(raw []byte) ([]models.CardRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []models.CardRecord
	if err := csvutil.Unmarshal(raw, &records); err != nil {
		return nil, &models.DecodeError{Format: FormatCSV, Err: err}
	}
	return records, nil
}
