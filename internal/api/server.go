package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pbaille/studyrev/internal/domain"
	"github.com/pbaille/studyrev/internal/export"
	"github.com/pbaille/studyrev/internal/tracker"
)

// Server handles HTTP requests for the review tracker API
type Server struct {
	svc  *tracker.Service
	addr string
}

// New creates a new API server
func New(svc *tracker.Service, addr string) *Server {
	return &Server{svc: svc, addr: addr}
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Labels
	mux.HandleFunc("GET /labels", s.listLabels)
	mux.HandleFunc("POST /labels", s.createLabel)
	mux.HandleFunc("PUT /labels/{id}", s.updateLabel)
	mux.HandleFunc("DELETE /labels/{id}", s.deleteLabel)

	// Contents
	mux.HandleFunc("GET /contents", s.listContents)
	mux.HandleFunc("POST /contents", s.createContent)
	mux.HandleFunc("GET /contents/{id}", s.getContent)
	mux.HandleFunc("PUT /contents/{id}", s.updateContent)
	mux.HandleFunc("DELETE /contents/{id}", s.deleteContent)

	// Reviews
	mux.HandleFunc("GET /reviews", s.listReviews)
	mux.HandleFunc("GET /reviews/today", s.reviewsToday)
	mux.HandleFunc("GET /reviews/overdue", s.reviewsOverdue)
	mux.HandleFunc("POST /contents/{id}/reviews/{type}/completion", s.markCompleted)
	mux.HandleFunc("DELETE /contents/{id}/reviews/{type}/completion", s.unmarkCompleted)

	mux.HandleFunc("GET /statistics", s.statistics)
	mux.HandleFunc("GET /export.xlsx", s.exportWorkbook)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("stopping server")
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LabelRequest is the request body for creating or updating a label
type LabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) listLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.svc.ListLabels(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"labels": labels})
}

func (s *Server) createLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelRequest
	if !decode(w, r, &req) {
		return
	}

	label, err := s.svc.CreateLabel(r.Context(), req.Name, req.Color)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, label)
}

func (s *Server) updateLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.svc.UpdateLabel(r.Context(), r.PathValue("id"), req.Name, req.Color); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) deleteLabel(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteLabel(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ContentRequest is the request body for creating or updating content
type ContentRequest struct {
	Title   string `json:"title"`
	LabelID string `json:"label_id"`
}

func (s *Server) listContents(w http.ResponseWriter, r *http.Request) {
	contents, err := s.svc.ListContents(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"contents": contents})
}

func (s *Server) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	contents, err := s.svc.ListContents(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, contents); err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="studyrev.xlsx"`)
	w.Write(buf.Bytes())
}

func (s *Server) createContent(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decode(w, r, &req) {
		return
	}

	content, err := s.svc.CreateContent(r.Context(), req.Title, req.LabelID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, content)
}

func (s *Server) getContent(w http.ResponseWriter, r *http.Request) {
	content, err := s.svc.GetContent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) updateContent(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.svc.UpdateContent(r.Context(), r.PathValue("id"), req.Title, req.LabelID); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) deleteContent(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteContent(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// listReviews serves ?date=YYYY-MM-DD or ?from=...&to=...
func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		reviews []domain.Review
		err     error
	)
	switch {
	case q.Get("date") != "":
		reviews, err = s.svc.ReviewsByDate(r.Context(), q.Get("date"))
	case q.Get("from") != "" || q.Get("to") != "":
		reviews, err = s.svc.ReviewsBetween(r.Context(), q.Get("from"), q.Get("to"))
	default:
		writeError(w, http.StatusBadRequest, "query parameter 'date' or 'from'/'to' is required")
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

func (s *Server) reviewsToday(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.svc.ReviewsToday(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    s.svc.Today(),
		"reviews": reviews,
	})
}

func (s *Server) reviewsOverdue(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.svc.OverdueReviews(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

func (s *Server) markCompleted(w http.ResponseWriter, r *http.Request) {
	at, err := s.svc.MarkReviewCompleted(r.Context(), r.PathValue("id"), r.PathValue("type"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"completed_at": at,
	})
}

func (s *Server) unmarkCompleted(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.UnmarkReviewCompleted(r.Context(), r.PathValue("id"), r.PathValue("type")); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Statistics(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// statusFor maps the tracker error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidLabel):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInUse),
		errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrNotCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the stable machine-readable name of a failure
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidLabel):
		return "invalid_label"
	case errors.Is(err, domain.ErrInUse):
		return "in_use"
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, domain.ErrNotCompleted):
		return "not_completed"
	default:
		return "internal"
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", "err", err)
		message = "internal error"
	}
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  errorCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
