package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"crimewatch/pkg/auth"
	"crimewatch/pkg/logger"
	"crimewatch/pkg/models"
	"crimewatch/pkg/store"
	"crimewatch/pkg/telemetry"
	"crimewatch/pkg/utils"
	"crimewatch/pkg/validation"
)

// DefaultFeedLimit bounds the report feed; the underlying log is unbounded
// but snapshots and reads never are.
const DefaultFeedLimit = 200

// ReportDeps wires the report endpoints.
type ReportDeps struct {
	FeedLimit int
}

func (d ReportDeps) feedLimit() int {
	if d.FeedLimit <= 0 {
		return DefaultFeedLimit
	}
	return d.FeedLimit
}

// RegisterReports registers the report intake, feed and back-office
// endpoints. Everything here is behind a session; status transitions are
// additionally behind an admin key.
func RegisterReports(r *mux.Router, deps ReportDeps) {
	h := &reportHandlers{deps: deps}
	r.Handle("/reports", auth.RequireSession(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	r.Handle("/reports", auth.RequireSession(http.HandlerFunc(h.list))).Methods(http.MethodGet)
	r.Handle("/reports/mine", auth.RequireSession(http.HandlerFunc(h.mine))).Methods(http.MethodGet)
	r.Handle("/reports/stream", auth.RequireSession(http.HandlerFunc(h.stream))).Methods(http.MethodGet)
	r.Handle("/reports/{id}/status", auth.RequireAdmin(http.HandlerFunc(h.updateStatus))).Methods(http.MethodPatch)
}

type reportHandlers struct {
	deps ReportDeps
}

// create validates the intake form and files the report attributed to the
// session identity. New reports always enter as pending.
func (h *reportHandlers) create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.SessionFromContext(r.Context())

	var form validation.ReportForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.Check(form); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := store.CreateReport(models.CrimeReport{
		CrimeType:   models.CrimeType(form.CrimeType),
		Date:        form.Date,
		Time:        form.Time,
		Location:    form.Location,
		Description: form.Description,
		WitnessInfo: form.WitnessInfo,
		ContactInfo: form.ContactInfo,
		UserID:      id.ID,
		UserEmail:   id.Email,
		UserName:    id.Name,
	})
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := store.AppendReportRef(id.ID, models.ReportRef{
		ID:        report.ID,
		Type:      report.CrimeType,
		Timestamp: report.Timestamp,
		Status:    report.Status,
	}); err != nil {
		logger.Error("report_ref_append_failed", "report", report.ID, "user", id.ID, "error", err)
	}
	telemetry.ReportsCreated.Inc()
	_ = utils.JSONWrite(w, http.StatusCreated, report)
}

// list returns the feed, descending and bounded.
func (h *reportHandlers) list(w http.ResponseWriter, r *http.Request) {
	limit := h.deps.feedLimit()
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	reports, err := store.ListReports(limit)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []models.CrimeReport{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Reports []models.CrimeReport `json:"reports"`
	}{Reports: reports})
}

// mine returns the caller's report index from their profile.
func (h *reportHandlers) mine(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.SessionFromContext(r.Context())
	p, err := store.GetProfile(id.ID)
	if err == store.ErrNotFound {
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Reports []models.ReportRef `json:"reports"`
		}{Reports: []models.ReportRef{}})
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	refs := p.Reports
	if refs == nil {
		refs = []models.ReportRef{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Reports []models.ReportRef `json:"reports"`
	}{Reports: refs})
}

// stream is the live feed subscription: bounded snapshot, newest first,
// then every new or updated report as it lands.
func (h *reportHandlers) stream(w http.ResponseWriter, r *http.Request) {
	reports, err := store.ListReports(h.deps.feedLimit())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	events, cancel := store.Events().Subscribe(store.TopicFeed)
	defer cancel()

	telemetry.ActiveStreams.WithLabelValues("feed").Inc()
	defer telemetry.ActiveStreams.WithLabelValues("feed").Dec()

	sse, err := startSSE(w)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	logger.Info("feed_stream_opened", "snapshot", len(reports))
	for _, rep := range reports {
		if err := sse.send("report", mustJSON(rep)); err != nil {
			return
		}
	}
	sse.pump(r.Context(), events)
	logger.Info("feed_stream_closed")
}

type statusRequest struct {
	Status models.ReportStatus `json:"status"`
}

func validStatus(s models.ReportStatus) bool {
	switch s {
	case models.StatusPending, models.StatusInvestigating, models.StatusResolved:
		return true
	}
	return false
}

// updateStatus transitions a report through the back-office pipeline.
func (h *reportHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !validStatus(req.Status) {
		utils.JSONError(w, http.StatusBadRequest, "invalid status")
		return
	}
	report, err := store.UpdateReportStatus(id, req.Status)
	if err == store.ErrNotFound {
		utils.JSONError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	telemetry.ReportTransitions.WithLabelValues(string(req.Status)).Inc()
	_ = utils.JSONWrite(w, http.StatusOK, report)
}
