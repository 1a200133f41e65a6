package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

const maxUploadBytes = 32 << 20

// UploadHandler accepts one spreadsheet of card records and merges it into
// the master table.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	scope, err := h.requestScope(r)
	if err != nil {
		h.CreateResponse(w, Response{Message: "unauthorized", Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.CreateResponse(w, Response{Message: "invalid upload", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.CreateResponse(w, Response{Message: "missing file field", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		h.CreateResponse(w, Response{Message: "unreadable upload", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	result, err := h.ingest.Ingest(r.Context(), raw, header.Filename, scope)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "master table updated",
		Code:    http.StatusOK,
		Data:    result,
	})
}

// QueryHandler returns the filtered, branch-partitioned master table.
func (h *Handler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	scope, err := h.requestScope(r)
	if err != nil {
		h.CreateResponse(w, Response{Message: "unauthorized", Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		h.CreateResponse(w, Response{Message: "invalid criteria", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	result, err := h.query.Query(r.Context(), criteria, scope)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: result})
}

// SummaryHandler returns per-branch counts for the summary table.
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	scope, err := h.requestScope(r)
	if err != nil {
		h.CreateResponse(w, Response{Message: "unauthorized", Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		h.CreateResponse(w, Response{Message: "invalid criteria", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	result, err := h.query.Summary(r.Context(), criteria, scope)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "ok", Code: http.StatusOK, Data: result})
}

// ExportHandler streams a workbook of the filtered rows: one branch when
// ?branch= is given, the whole grouped result otherwise.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	scope, err := h.requestScope(r)
	if err != nil {
		h.CreateResponse(w, Response{Message: "unauthorized", Code: http.StatusUnauthorized, Error: err.Error()})
		return
	}
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		h.CreateResponse(w, Response{Message: "invalid criteria", Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	branch := strings.TrimSpace(r.URL.Query().Get("branch"))
	if branch != "" {
		criteria.Branches = []string{branch}
	}

	result, err := h.query.Query(r.Context(), criteria, scope)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var filename string
	var data []byte
	if branch != "" {
		group := models.BranchGroup{BranchCode: branch}
		for _, g := range result.Groups {
			if g.BranchCode == branch {
				group = g
				break
			}
		}
		filename, data, err = h.export.ExportBranch(group)
	} else {
		filename, data, err = h.export.Export(result, time.Now())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func criteriaFromQuery(r *http.Request) (models.QueryCriteria, error) {
	q := r.URL.Query()
	criteria := models.QueryCriteria{Text: strings.TrimSpace(q.Get("text"))}

	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return criteria, fmt.Errorf("bad date_from %q: %w", v, err)
		}
		criteria.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return criteria, fmt.Errorf("bad date_to %q: %w", v, err)
		}
		criteria.DateTo = &t
	}
	if v := q.Get("branches"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				criteria.Branches = append(criteria.Branches, b)
			}
		}
	}
	return criteria, nil
}
