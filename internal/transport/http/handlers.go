package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"idverify/internal/audit"
	"idverify/internal/credential"
	"idverify/internal/everify"
	"idverify/internal/verify"
)

//go:generate mockgen -source=handlers.go -destination=mocks/transport-mocks.go -package=mocks VerificationService,EVerifyClient,AuditService

// VerificationService is the state-machine surface the transport depends on.
type VerificationService interface {
	Verify(ctx context.Context, raw string, offline bool) verify.Result
	Current() (verify.Result, bool)
	Reset()
}

// EVerifyClient proxies the public registry for the standalone endpoints.
type EVerifyClient interface {
	Check(ctx context.Context, value string) (map[string]any, int, error)
	Profile(ctx context.Context, tracking string) (map[string]any, int, error)
}

// AuditService records and lists scan status events.
type AuditService interface {
	Record(ctx context.Context, status, idType string)
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler is the thin HTTP layer; everything of substance happens in the
// injected services.
type Handler struct {
	log      *slog.Logger
	verifier VerificationService
	everify  EVerifyClient
	envelope credential.EnvelopeChecker
	audit    AuditService
	offline  bool
}

func NewHandler(
	verifier VerificationService,
	ev EVerifyClient,
	envelope credential.EnvelopeChecker,
	auditSvc AuditService,
	forceOffline bool,
	log *slog.Logger,
) *Handler {
	return &Handler{
		log:      log,
		verifier: verifier,
		everify:  ev,
		envelope: envelope,
		audit:    auditSvc,
		offline:  forceOffline,
	}
}

type verifyRequest struct {
	QR      string `json:"qr"`
	Offline bool   `json:"offline"`
}

// handleVerify runs the full pipeline for a scanned QR string.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QR == "" {
		writeError(w, http.StatusBadRequest, "missing_qr", "request must carry a qr field")
		return
	}

	res := h.verifier.Verify(r.Context(), req.QR, req.Offline || h.offline)
	writeJSON(w, http.StatusOK, res)
}

// handleResult returns the most recent scan's result, including updates
// delivered by a finished consent poll.
func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	res, ok := h.verifier.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "no_result", "no verification has run yet")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReset discards the current result and cancels in-flight polling.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.verifier.Reset()
	w.WriteHeader(http.StatusNoContent)
}

type coseRequest struct {
	COSEString string `json:"cose_string"`
}

// handleCOSE exposes the envelope integrity check as a bare boolean, the
// contract the verification front end expects.
func (h *Handler) handleCOSE(w http.ResponseWriter, r *http.Request) {
	var req coseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.COSEString == "" {
		writeError(w, http.StatusBadRequest, "missing_cose_string", "request must carry a cose_string field")
		return
	}
	writeJSON(w, http.StatusOK, h.envelope.Check(r.Context(), req.COSEString))
}

type everifyCheckRequest struct {
	Value string `json:"value"`
}

// handleEVerifyCheck proxies the registry check endpoint and returns the
// normalized payload with its display projections.
func (h *Handler) handleEVerifyCheck(w http.ResponseWriter, r *http.Request) {
	var req everifyCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == "" {
		writeError(w, http.StatusBadRequest, "missing_value", "request must carry a value field")
		return
	}

	raw, code, err := h.everify.Check(r.Context(), req.Value)
	if err != nil {
		writeError(w, http.StatusBadGateway, "everify_unavailable", "upstream eVerify request failed")
		return
	}
	if code < 200 || code >= 300 {
		writeError(w, code, "everify_rejected", "upstream eVerify request failed")
		return
	}

	norm := everify.Normalize(raw)
	writeJSON(w, http.StatusOK, map[string]any{
		"normalized":    norm,
		"personal_info": everify.ToPersonalInfo(norm),
		"details":       everify.BuildDetails(norm),
	})
}

// handleEGovProfile polls the consent-gated profile once, for clients that
// drive their own polling.
func (h *Handler) handleEGovProfile(w http.ResponseWriter, r *http.Request) {
	tracking := r.URL.Query().Get("tracking")
	if tracking == "" {
		writeError(w, http.StatusBadRequest, "missing_tracking", "tracking query parameter is required")
		return
	}

	raw, code, err := h.everify.Profile(r.Context(), tracking)
	if err != nil {
		writeError(w, http.StatusBadGateway, "everify_unavailable", "upstream profile request failed")
		return
	}
	if code < 200 || code >= 300 {
		writeError(w, code, "everify_rejected", "upstream profile request failed")
		return
	}

	profile := everify.ExtractProfile(raw)
	if len(profile) == 0 {
		writeError(w, http.StatusNotFound, "profile_pending", "profile not available yet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profile":       profile,
		"personal_info": everify.ProfilePersonalInfo(profile),
		"details":       everify.ProfileDetails(profile),
	})
}

type statRequest struct {
	Stat string `json:"stat"`
	Type string `json:"type"`
}

// handleStat records a status transition pushed by an external front end.
func (h *Handler) handleStat(w http.ResponseWriter, r *http.Request) {
	var req statRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stat == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "request must carry stat and type fields")
		return
	}
	h.audit.Record(r.Context(), req.Stat, req.Type)
	w.WriteHeader(http.StatusNoContent)
}

// handleRecentScans lists the newest scan events.
func (h *Handler) handleRecentScans(w http.ResponseWriter, r *http.Request) {
	events, err := h.audit.Recent(r.Context(), 50)
	if err != nil {
		h.log.ErrorContext(r.Context(), "list scan events failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError keeps the JSON error envelope consistent across handlers.
// Internal errors omit the description.
func writeError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" && status != http.StatusInternalServerError {
		body["error_description"] = description
	}
	writeJSON(w, status, body)
}
