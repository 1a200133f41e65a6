package models

import (
	"time"
)

// Header names of the master table. Upload headers are matched against these
// exactly (after trimming), case-sensitive.
const (
	ColCardNumber    = "Unmasked Card Number"
	ColAccountNumber = "Account Number"
	ColCustomerName  = "Customer Name"
	ColIssuanceDate  = "Issuance Date"
	ColBranchCode    = "Delivery Branch Code"
	ColLoadDate      = "Load Date"
)

// CardRecord is one row of the master table. Card and account numbers are
// opaque identifiers and must stay strings, leading zeros are significant.
type CardRecord struct {
	CardNumber    string       `csv:"Unmasked Card Number" json:"card_number"`
	AccountNumber string       `csv:"Account Number" json:"account_number"`
	CustomerName  string       `csv:"Customer Name" json:"customer_name"`
	IssuanceDate  IssuanceDate `csv:"Issuance Date" json:"issuance_date"`
	BranchCode    string       `csv:"Delivery Branch Code" json:"branch_code"`
	LoadDate      Date         `csv:"Load Date" json:"load_date"`
}

// DedupKey identifies "the same record" across ingestions.
type DedupKey struct {
	Card    string
	Account string
	Branch  string
}

func (r CardRecord) Key() DedupKey {
	return DedupKey{Card: r.CardNumber, Account: r.AccountNumber, Branch: r.BranchCode}
}

// SchemaColumn is one required upload column.
type SchemaColumn struct {
	Name string
	Kind string // "text" or "date"
}

// Schema is the declared upload schema, in display order.
type Schema []SchemaColumn

// UploadSchema lists the five columns every accepted batch must carry.
// Load Date is system-assigned and never expected in uploads.
var UploadSchema = Schema{
	{Name: ColCardNumber, Kind: "text"},
	{Name: ColAccountNumber, Kind: "text"},
	{Name: ColCustomerName, Kind: "text"},
	{Name: ColIssuanceDate, Kind: "date"},
	{Name: ColBranchCode, Kind: "text"},
}

// Missing returns the schema columns absent from headers, in schema order.
func (s Schema) Missing(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, col := range s {
		if !present[col.Name] {
			missing = append(missing, col.Name)
		}
	}
	return missing
}

// ExportColumns is the column order of snapshots and exports.
var ExportColumns = []string{
	ColCardNumber,
	ColAccountNumber,
	ColCustomerName,
	ColIssuanceDate,
	ColBranchCode,
	ColLoadDate,
}

// IngestResult reports the outcome of one accepted batch.
type IngestResult struct {
	BatchID          string `json:"batch_id"`
	SubmittedRows    int    `json:"submitted_rows"`
	RetainedRows     int    `json:"retained_rows"`
	TotalRows        int    `json:"total_rows"`
	UnparseableDates int    `json:"unparseable_dates"`
	LoadDate         Date   `json:"load_date"`
}

// NewDate truncates t to a calendar date.
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}
