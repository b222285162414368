package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-go-golems/embedbot/pkg/chatservice"
	"github.com/pkg/errors"
)

const (
	DetailInvalidBody  = "Invalid request body"
	DetailUnavailable  = "Chat service temporarily unavailable. Please try again."
	DetailRateLimited  = "Too many requests. Please try again later."
	DetailNotFound     = "Not Found"
	HeaderSessionID    = "X-Session-Id"
	HeaderSessionReset = "X-Session-Reset"

	maxBodyBytes = 1 << 20
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": s.settings.Title,
		"version": s.settings.Version,
		"health":  "/health",
		"chat":    "POST /chat",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, DetailInvalidBody)
		return
	}

	reset, _ := strconv.ParseBool(strings.TrimSpace(r.Header.Get(HeaderSessionReset)))
	reply, err := s.chat.Chat(r.Context(), chatservice.Request{
		Message:   body.Message,
		SessionID: r.Header.Get(HeaderSessionID),
		Reset:     reset,
	})
	if err != nil {
		var verr *chatservice.ValidationError
		if errors.As(err, &verr) {
			writeDetail(w, http.StatusBadRequest, verr.Reason)
			return
		}
		writeDetail(w, http.StatusServiceUnavailable, DetailUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.chat.ClearSession(r.Context(), id); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Msg("could not clear session")
		writeDetail(w, http.StatusServiceUnavailable, DetailUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// staticHandler serves files from dir and falls back to index.html for
// anything else so client-side routes resolve.
func (s *Server) staticHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeDetail(w, http.StatusNotFound, DetailNotFound)
			return
		}
		rel := path.Clean("/" + r.URL.Path)
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if fi, err := os.Stat(full); err == nil && fi.Mode().IsRegular() {
			http.ServeFile(w, r, full)
			return
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			writeDetail(w, http.StatusNotFound, DetailNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeFile(w, r, index)
	}
}
