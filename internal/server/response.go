package server

import (
	"encoding/json"
	"net/http"

	"github.com/vitalis/turnos/pkg/logger"
)

// Response - стандартный конверт ответа API
type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithContext(r.Context()).Warn("Failed to encode response", logger.Error(err))
	}
}

func (s *Server) success(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	s.writeJSON(w, r, http.StatusOK, Response{Status: "success", Message: message, Data: data})
}

func (s *Server) created(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	s.writeJSON(w, r, http.StatusCreated, Response{Status: "success", Message: message, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, message, errText string) {
	s.writeJSON(w, r, status, Response{Status: "error", Message: message, Error: errText})
}

func (s *Server) invalid(w http.ResponseWriter, r *http.Request, message string, errs map[string]string) {
	s.writeJSON(w, r, http.StatusUnprocessableEntity, Response{Status: "error", Message: message, Errors: errs})
}
