package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/techn4r/ai-code-reviewer/internal/domain"
	"github.com/techn4r/ai-code-reviewer/internal/usecase/review"
)

type reviewRequest struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Filename string `json:"filename,omitempty"`
	Context  string `json:"context,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

type diffReviewRequest struct {
	Diff        string            `json:"diff"`
	BaseContent map[string]string `json:"base_content,omitempty"`
	Mode        string            `json:"mode,omitempty"`
}

type fileReviewRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

type diffReviewResponse struct {
	Results []domain.ReviewResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	svc, ok := s.serviceFor(w, req.Mode)
	if !ok {
		return
	}

	result, err := svc.Review(r.Context(), req.Code, req.Language, req.Context, req.Filename)
	if err != nil {
		s.reviewFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReviewDiff(w http.ResponseWriter, r *http.Request) {
	var req diffReviewRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Diff) == "" {
		writeError(w, http.StatusBadRequest, "diff is required")
		return
	}

	svc, ok := s.serviceFor(w, req.Mode)
	if !ok {
		return
	}

	results, err := svc.ReviewDiff(r.Context(), req.Diff, req.BaseContent)
	if err != nil {
		s.reviewFailed(w, r, err)
		return
	}
	if results == nil {
		results = []domain.ReviewResult{}
	}
	writeJSON(w, http.StatusOK, diffReviewResponse{Results: results})
}

func (s *Server) handleReviewFile(w http.ResponseWriter, r *http.Request) {
	var req fileReviewRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	svc, ok := s.serviceFor(w, req.Mode)
	if !ok {
		return
	}

	result, err := svc.ReviewFile(r.Context(), req.Path)
	if err != nil {
		s.reviewFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeRequest enforces POST + JSON body and writes the error response
// itself when the request is unusable.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 10<<20))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) serviceFor(w http.ResponseWriter, mode string) (Service, bool) {
	svc, err := s.services(review.ParseMode(mode))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return svc, true
}

func (s *Server) reviewFailed(w http.ResponseWriter, r *http.Request, err error) {
	if s.opts.Logger != nil {
		s.opts.Logger.LogWarning(r.Context(), "review request failed", map[string]interface{}{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
	}
	writeError(w, http.StatusBadGateway, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
