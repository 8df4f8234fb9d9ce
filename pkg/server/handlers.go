package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"telegate/pkg/login"
)

type phoneRequest struct {
	CountryCode string `json:"country_code"`
	PhoneNumber string `json:"phone_number"`
}

type codeRequest struct {
	Code string `json:"code"`
}

// handleStatus reports the current session state label.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": s.svc.Status()})
}

// handlePhone accepts a phone submission and dispatches the background
// phone flow. The response acknowledges dispatch, not the outcome;
// callers poll /status.
func (s *Server) handlePhone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusOK, "Invalid JSON body")
		return
	}
	if req.CountryCode == "" || req.PhoneNumber == "" {
		writeError(w, http.StatusOK, "Missing country_code or phone_number")
		return
	}

	task, err := s.svc.SubmitPhone(req.CountryCode, req.PhoneNumber)
	if err != nil {
		writeError(w, http.StatusOK, submissionErrorMessage(err))
		return
	}

	s.log.Info("phone flow dispatched", "task", task.ID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Phone number received, processing login...",
	})
}

// handleCode accepts the one-time code and dispatches the background
// code flow.
func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusOK, "Invalid JSON body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusOK, "Missing code")
		return
	}

	task, err := s.svc.SubmitCode(req.Code)
	if err != nil {
		writeError(w, http.StatusOK, submissionErrorMessage(err))
		return
	}

	s.log.Info("code flow dispatched", "task", task.ID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Code received, processing...",
	})
}

// handleAccounts lists persisted account records.
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	if s.accounts == nil {
		writeError(w, http.StatusInternalServerError, "Account store not initialized")
		return
	}

	records, err := s.accounts.List(r.Context())
	if err != nil {
		s.log.Error("account listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// submissionErrorMessage maps manager errors onto the messages callers
// match against.
func submissionErrorMessage(err error) string {
	if errors.Is(err, login.ErrNotInitialized) {
		return "Automation not initialized. Please enter phone number first."
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
