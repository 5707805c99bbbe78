package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"realscan/internal/domain"
	"realscan/internal/infra/logging"
	"realscan/internal/infra/metrics"
	"realscan/internal/usecase"
)

// createCodeRequest is the expected JSON body for POST /api/codes.
type createCodeRequest struct {
	Duration float64 `json:"duration"`
	Unit     string  `json:"unit"`
	Note     string  `json:"note"`
}

type createCodeResponse struct {
	OK bool `json:"ok"`
	*usecase.GenerateResult
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) listCodes(w http.ResponseWriter, r *http.Request) {
	views, err := s.codeUC.List(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("list codes failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Codes []usecase.CodeView `json:"codes"`
	}{Codes: views})
}

func (s *Server) createCode(w http.ResponseWriter, r *http.Request) {
	var req createCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := s.codeUC.Generate(r.Context(), req.Duration, req.Unit, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDuration), errors.Is(err, domain.ErrInvalidUnit):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			metrics.IncGenerateFailure()
			logging.With(r.Context(), s.log).Error().Err(err).Msg("generate code failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	metrics.IncCodesIssued()
	writeJSON(w, http.StatusOK, createCodeResponse{OK: true, GenerateResult: res})
}

func (s *Server) revokeCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.codeUC.Revoke(r.Context(), code); err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("revoke code failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	metrics.IncCodesRevoked()
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) validateCode(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	res, err := s.codeUC.Validate(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCode) {
			metrics.IncValidation("bad_request")
			writeJSON(w, http.StatusBadRequest, struct {
				OK     bool   `json:"ok"`
				Reason string `json:"reason"`
			}{Reason: "missing code"})
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("validate code failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	// Business rejections are 200s with ok:false, distinct from transport
	// failures.
	switch {
	case res.OK:
		metrics.IncValidation("ok")
	case res.Reason == "code not found":
		metrics.IncValidation("not_found")
	default:
		metrics.IncValidation(res.Reason)
	}
	writeJSON(w, http.StatusOK, res)
}
