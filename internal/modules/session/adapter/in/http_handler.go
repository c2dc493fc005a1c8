package in

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	sessiondto "siav/internal/modules/session/dto"
	sessionin "siav/internal/modules/session/port/in"
	apperrors "siav/internal/platform/errors"
)

// HTTPHandler exposes the session usecase as a JSON API.
type HTTPHandler struct {
	usecase sessionin.Usecase
}

func NewHTTPHandler(usecase sessionin.Usecase) *HTTPHandler {
	return &HTTPHandler{usecase: usecase}
}

type errorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Routes mounts the session endpoints on r.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Get("/", h.Snapshot)
		r.Get("/shock-advice", h.ShockAdvice)
		r.Post("/{action}", h.Action)
	})
	r.Route("/api/logs", func(r chi.Router) {
		r.Get("/", h.ListLogs)
		r.Post("/sync", h.Sync)
	})
}

func (h *HTTPHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req sessiondto.StartInput
	if !decode(w, r, &req) {
		return
	}
	out, err := h.usecase.StartSession(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *HTTPHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	out, err := h.usecase.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) ShockAdvice(w http.ResponseWriter, r *http.Request) {
	out, err := h.usecase.ShockAdvice(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Action dispatches POST /api/session/{action}.
func (h *HTTPHandler) Action(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		out any
		err error
	)
	switch chi.URLParam(r, "action") {
	case "compressions":
		out, err = h.usecase.BeginCompressions(ctx)
	case "rhythm-check":
		out, err = h.usecase.TriggerRhythmCheck(ctx)
	case "rhythm":
		var req sessiondto.RhythmInput
		if !decode(w, r, &req) {
			return
		}
		out, err = h.usecase.RecordRhythm(ctx, req)
	case "shock":
		var req sessiondto.ShockInput
		if !decode(w, r, &req) {
			return
		}
		out, err = h.usecase.RecordShock(ctx, req)
	case "medication":
		var req sessiondto.MedicationInput
		if !decode(w, r, &req) {
			return
		}
		out, err = h.usecase.RecordMedication(ctx, req)
	case "note":
		var req sessiondto.NoteInput
		if !decode(w, r, &req) {
			return
		}
		err = h.usecase.AddNote(ctx, req)
		out = map[string]string{"status": "ok"}
	case "vitals":
		var req sessiondto.VitalsInput
		if !decode(w, r, &req) {
			return
		}
		out, err = h.usecase.RecordVitals(ctx, req)
	case "glasgow":
		var req sessiondto.GlasgowInput
		if !decode(w, r, &req) {
			return
		}
		out, err = h.usecase.RecordGlasgow(ctx, req)
	case "quality":
		var req sessiondto.QualityInput
		if !decode(w, r, &req) {
			return
		}
		out, err = h.usecase.CheckQuality(ctx, req)
	case "rosc":
		out, err = h.usecase.RecordROSC(ctx)
	case "finish":
		var req sessiondto.FinishInput
		if !decode(w, r, &req) {
			return
		}
		out, err = h.usecase.FinishSession(ctx, req)
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: apiError{Code: "NOT_FOUND", Message: "unknown session action"}})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: apiError{Code: "VALIDATION_ERROR", Message: "limit must be a non-negative integer"}})
			return
		}
		limit = n
	}
	out, err := h.usecase.ListLogs(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []sessiondto.LogOutput{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": out})
}

func (h *HTTPHandler) Sync(w http.ResponseWriter, r *http.Request) {
	delivered, err := h.usecase.SyncPending(r.Context())
	if err != nil && delivered == 0 {
		writeError(w, err)
		return
	}
	resp := map[string]any{"delivered": delivered}
	if err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode treats an empty body as the zero request.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: apiError{Code: "VALIDATION_ERROR", Message: "invalid request body"}})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		status, code = http.StatusUnprocessableEntity, "VALIDATION_ERROR"
	case errors.Is(err, apperrors.ErrNoActiveSession):
		status, code = http.StatusConflict, "NO_ACTIVE_SESSION"
	case errors.Is(err, apperrors.ErrActiveSessionExists):
		status, code = http.StatusConflict, "SESSION_ALREADY_ACTIVE"
	case errors.Is(err, apperrors.ErrConflict):
		status, code = http.StatusConflict, "ILLEGAL_TRANSITION"
	case errors.Is(err, apperrors.ErrSinkNotConfigured):
		status, code = http.StatusServiceUnavailable, "SINK_NOT_CONFIGURED"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	}
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
