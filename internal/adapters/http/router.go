package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mvcarvalho/docsentinel/internal/core/ports"
	"github.com/mvcarvalho/docsentinel/internal/observability/metrics"
)

const reportSuffix = "/report.xlsx"

type RouterOptions struct {
	MaxUploadBytes    int64
	RateLimitRPS      float64
	RateLimitBurst    int
	MaxInFlight       int
	BackpressureWait  time.Duration
	HTTPServerMetrics *metrics.HTTPServerMetrics
}

type Router struct {
	submitter ports.ScanSubmitter
	results   ports.ScanResultReader
	renderer  ports.ReportRenderer
	options   RouterOptions
}

func NewRouter(
	submitter ports.ScanSubmitter,
	results ports.ScanResultReader,
	renderer ports.ReportRenderer,
	options RouterOptions,
) *Router {
	if options.BackpressureWait <= 0 {
		options.BackpressureWait = 2 * time.Second
	}
	return &Router{
		submitter: submitter,
		results:   results,
		renderer:  renderer,
		options:   options,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/scans", rt.submitScan)
	mux.HandleFunc("/v1/scans/", rt.scanSubresource)

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.options.RateLimitRPS, rt.options.RateLimitBurst)
	handler = backpressureMiddleware(handler, rt.options.MaxInFlight, rt.options.BackpressureWait)
	if rt.options.HTTPServerMetrics != nil {
		handler = rt.options.HTTPServerMetrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) submitScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if rt.options.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.options.MaxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	job, err := rt.submitter.Submit(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), errorMessage(err))
		return
	}

	if rt.options.HTTPServerMetrics != nil {
		rt.options.HTTPServerMetrics.RecordUpload("api", job.SizeBytes)
	}
	writeJSON(w, http.StatusAccepted, job)
}

// scanSubresource serves GET /v1/scans/{id} and GET /v1/scans/{id}/report.xlsx.
func (rt *Router) scanSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/scans/")
	wantReport := strings.HasSuffix(rest, reportSuffix)
	id := strings.TrimSuffix(rest, reportSuffix)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "scan id is required")
		return
	}

	result, err := rt.results.GetResult(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), errorMessage(err))
		return
	}

	if !wantReport {
		writeJSON(w, http.StatusOK, result)
		return
	}

	report, err := rt.renderer.Render(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render report")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="scan-`+id+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = report.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
