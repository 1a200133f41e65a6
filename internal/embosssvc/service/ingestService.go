package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/cardops/emboss-services/internal/embosssvc/codec"
	"github.com/cardops/emboss-services/internal/embosssvc/dateparse"
	"github.com/cardops/emboss-services/internal/embosssvc/models"
	"github.com/cardops/emboss-services/internal/embosssvc/store"
)

// IngestService runs the upload pipeline: decode, validate, normalize, merge
// into the master snapshot and report. A batch is accepted in full or
// rejected in full; nothing is persisted on decode or validation failure.
type IngestService struct {
	master *store.MasterStore
	parser *dateparse.Parser
	now    func() time.Time
}

func NewIngestService(master *store.MasterStore, order dateparse.Order) *IngestService {
	return &IngestService{
		master: master,
		parser: dateparse.New(order),
		now:    time.Now,
	}
}

func (s *IngestService) Ingest(ctx context.Context, raw []byte, filename string, uploader models.RequesterScope) (*models.IngestResult, error) {
	batch, err := codec.DecodeUpload(raw, filename)
	if err != nil {
		return nil, err
	}

	if missing := models.UploadSchema.Missing(batch.Headers); len(missing) > 0 {
		return nil, &models.ValidationError{MissingColumns: missing}
	}

	loadDate := models.NewDate(s.now())
	records := make([]models.CardRecord, 0, len(batch.Rows))
	unparseable := 0
	for _, row := range batch.Rows {
		issued := models.UnparsedDate(strings.TrimSpace(row.IssuanceDate))
		if t, ok := s.parser.Parse(row.IssuanceDate); ok {
			issued = models.ParsedDate(t)
		} else {
			unparseable++
		}
		records = append(records, models.CardRecord{
			CardNumber:    row.CardNumber,
			AccountNumber: row.AccountNumber,
			CustomerName:  row.CustomerName,
			IssuanceDate:  issued,
			BranchCode:    strings.TrimSpace(row.BranchCode),
			LoadDate:      loadDate,
		})
	}

	merged, err := s.master.Update(ctx, func(existing []models.CardRecord) []models.CardRecord {
		return dedupeKeepLast(append(existing, records...))
	})
	if err != nil {
		return nil, err
	}

	result := &models.IngestResult{
		BatchID:          uuid.New().String(),
		SubmittedRows:    len(batch.Rows),
		RetainedRows:     distinctKeys(records),
		TotalRows:        len(merged),
		UnparseableDates: unparseable,
		LoadDate:         loadDate,
	}
	log.Infof("batch %s ingested by %s: %d submitted, %d retained, %d total, %d unparseable dates",
		result.BatchID, uploader.UserID, result.SubmittedRows, result.RetainedRows,
		result.TotalRows, result.UnparseableDates)
	return result, nil
}

// dedupeKeepLast removes duplicate rows by dedup key, keeping each key's last
// occurrence in append order. Newly uploaded rows therefore win over stored
// rows for the same key, which is what makes corrected re-uploads stick.
func dedupeKeepLast(rows []models.CardRecord) []models.CardRecord {
	last := make(map[models.DedupKey]int, len(rows))
	for i, r := range rows {
		last[r.Key()] = i
	}
	out := make([]models.CardRecord, 0, len(last))
	for i, r := range rows {
		if last[r.Key()] == i {
			out = append(out, r)
		}
	}
	return out
}

func distinctKeys(rows []models.CardRecord) int {
	keys := make(map[models.DedupKey]struct{}, len(rows))
	for _, r := range rows {
		keys[r.Key()] = struct{}{}
	}
	return len(keys)
}
