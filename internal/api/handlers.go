package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/doctriage/doctriage/internal/review"
	"github.com/doctriage/doctriage/pkg/models"
)

type categorizeRequest struct {
	FilePath string `json:"file_path"`
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "file_path is required")
		return
	}

	result, err := s.engine.Process(r.Context(), req.FilePath)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type feedbackRequest struct {
	FileID             string                `json:"file_id"`
	PredictedCategory  string                `json:"predicted_category"`
	CorrectedCategory  string                `json:"corrected_category"`
	OriginalConfidence float64               `json:"original_confidence"`
	UserConfidence     models.UserConfidence `json:"user_confidence"`
	Note               string                `json:"note"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileID == "" || req.PredictedCategory == "" || req.CorrectedCategory == "" {
		writeError(w, http.StatusBadRequest, "file_id, predicted_category, and corrected_category are required")
		return
	}

	item := models.FeedbackItem{
		ID:                 uuid.New(),
		FileID:             req.FileID,
		PredictedCategory:  models.Category(req.PredictedCategory),
		CorrectedCategory:  models.Category(req.CorrectedCategory),
		OriginalConfidence: req.OriginalConfidence,
		UserConfidence:     req.UserConfidence.Value(),
		Note:               req.Note,
	}
	if err := s.calibrator.Record(r.Context(), item); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Feedback resolves any pending review for the same file.
	if s.reviews != nil {
		if _, err := s.reviews.RemoveByFile(r.Context(), req.FileID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCalibration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"records": s.calibrator.Records(),
	})
}

func (s *Server) handleListReview(w http.ResponseWriter, r *http.Request) {
	if s.reviews == nil {
		writeError(w, http.StatusServiceUnavailable, "review queue not configured")
		return
	}
	items, err := s.reviews.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

type updateReviewRequest struct {
	Status review.Status `json:"status"`
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	if s.reviews == nil {
		writeError(w, http.StatusServiceUnavailable, "review queue not configured")
		return
	}
	id, err := uuid.Parse(r.PathValue("reviewID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review ID")
		return
	}

	var req updateReviewRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != review.StatusPending && req.Status != review.StatusResolved {
		writeError(w, http.StatusBadRequest, "status must be 'pending' or 'resolved'")
		return
	}

	updated, err := s.reviews.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "review item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	if s.reviews == nil {
		writeError(w, http.StatusServiceUnavailable, "review queue not configured")
		return
	}
	id, err := uuid.Parse(r.PathValue("reviewID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid review ID")
		return
	}

	removed, err := s.reviews.Remove(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "review item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Thresholds())
}
