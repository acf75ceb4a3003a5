package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"showlog/models"
	"showlog/services/backend"
)

type reportClient interface {
	DownloadReport(ctx context.Context, period models.ReportPeriod, w io.Writer) error
}

var _ reportClient = (*backend.Client)(nil)

// ReportsHandler streams generated watch reports through to the caller.
type ReportsHandler struct {
	Client reportClient
}

func NewReportsHandler(client reportClient) *ReportsHandler {
	return &ReportsHandler{Client: client}
}

// Generate proxies the report for ?period= (default all). The body is an
// opaque document produced by the remote service.
func (h *ReportsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	period := models.ReportPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = models.ReportAll
	}
	if !period.Valid() {
		http.Error(w, "period must be one of all, year, month, week", http.StatusBadRequest)
		return
	}

	// Buffer the document so a mid-stream failure can still produce a clean
	// error response. Reports are small.
	var buf bytes.Buffer
	if err := h.Client.DownloadReport(r.Context(), period, &buf); err != nil {
		writeUpstreamError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "watch-report-"+string(period)+".pdf"))
	w.Write(buf.Bytes())
}
