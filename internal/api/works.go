package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mediafold/mediafold/internal/library"
	"github.com/mediafold/mediafold/internal/media"
)

// Normalization request/response types
type NormalizeRequest struct {
	Items []RawItemRequest `json:"items" binding:"required"`
}

type RawItemRequest struct {
	OriginalTitle    string              `json:"original_title"`
	Year             *int                `json:"year,omitempty"`
	Season           *int                `json:"season,omitempty"`
	Episode          *int                `json:"episode,omitempty"`
	DurationMs       int64               `json:"duration_ms,omitempty"`
	Kind             string              `json:"kind,omitempty"`
	ExplicitIdentity string              `json:"explicit_identity,omitempty"`
	Pipeline         string              `json:"pipeline" binding:"required"`
	SourceItemID     string              `json:"source_item_id" binding:"required"`
	SourceLabel      string              `json:"source_label,omitempty"`
	AuthorityRef     *media.AuthorityRef `json:"authority_ref,omitempty"`
	Attrs            map[string]string   `json:"attrs,omitempty"`
}

type NormalizeResponse struct {
	Works         []media.Work `json:"works"`
	LinkedItems   int          `json:"linked_items"`
	UnlinkedItems int          `json:"unlinked_items"`
	DeadDropped   int          `json:"dead_dropped"`
}

type WorkResponse struct {
	ID int64 `json:"id"`
	media.Work
}

type DeadVariantRequest struct {
	VariantKey string `json:"variant_key" binding:"required"`
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// normalizeBatch runs one normalization pass over a submitted batch and
// replaces the stored library with the result.
func (s *Server) normalizeBatch(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	items := make([]media.RawItem, 0, len(req.Items))
	for _, r := range req.Items {
		kind := media.Kind(r.Kind)
		if r.Kind == "" {
			kind = media.KindUnknown
		}
		items = append(items, media.RawItem{
			OriginalTitle:    r.OriginalTitle,
			Year:             r.Year,
			Season:           r.Season,
			Episode:          r.Episode,
			DurationMs:       r.DurationMs,
			Kind:             kind,
			ExplicitIdentity: r.ExplicitIdentity,
			Pipeline:         media.Pipeline(r.Pipeline),
			SourceItemID:     r.SourceItemID,
			SourceLabel:      r.SourceLabel,
			AuthorityRef:     r.AuthorityRef,
			Attrs:            r.Attrs,
		})
	}

	result := s.engine.Normalize(items, s.prefs)

	if err := s.workRepo.ReplaceAll(result.Works); err != nil {
		slog.Error("Failed to persist normalization result", "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to persist works")
		return
	}

	if s.metrics != nil {
		s.metrics.NormalizePasses.Inc()
		s.metrics.WorksEmitted.Add(float64(len(result.Works)))
		s.metrics.UnlinkedWorks.Add(float64(result.UnlinkedItems))
		s.metrics.DeadVariantsFiltered.Add(float64(result.DeadDropped))
	}

	c.JSON(http.StatusOK, NormalizeResponse{
		Works:         result.Works,
		LinkedItems:   result.LinkedItems,
		UnlinkedItems: result.UnlinkedItems,
		DeadDropped:   result.DeadDropped,
	})
}

func (s *Server) listWorks(c *gin.Context) {
	works, err := s.workRepo.List()
	if err != nil {
		slog.Error("Failed to list works", "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to list works")
		return
	}

	resp := make([]WorkResponse, 0, len(works))
	for _, w := range works {
		resp = append(resp, WorkResponse{ID: w.ID, Work: w.Work})
	}
	c.JSON(http.StatusOK, gin.H{"works": resp})
}

func (s *Server) getWork(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid work ID")
		return
	}

	w, err := s.workRepo.GetByID(id)
	if err != nil {
		slog.Error("Failed to get work", "id", id, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to get work")
		return
	}
	if w == nil {
		errorResponse(c, http.StatusNotFound, "work not found")
		return
	}

	c.JSON(http.StatusOK, WorkResponse{ID: w.ID, Work: w.Work})
}

func (s *Server) enrichWork(c *gin.Context) {
	if s.enricher == nil {
		errorResponse(c, http.StatusServiceUnavailable, "enrichment not configured")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid work ID")
		return
	}

	decision, err := s.enricher.EnrichOne(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			errorResponse(c, http.StatusNotFound, "work not found")
			return
		}
		slog.Error("Enrichment failed", "id", id, "error", err)
		errorResponse(c, http.StatusInternalServerError, "enrichment failed")
		return
	}

	c.JSON(http.StatusOK, decision)
}

func (s *Server) enrichAll(c *gin.Context) {
	if s.enricher == nil {
		errorResponse(c, http.StatusServiceUnavailable, "enrichment not configured")
		return
	}

	summary, err := s.enricher.EnrichAll(c.Request.Context())
	if err != nil {
		slog.Error("Enrichment run failed", "error", err)
		errorResponse(c, http.StatusInternalServerError, "enrichment run failed")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// reportDeadVariant records a permanently broken rendition. The variant stays
// in the stored library until the next normalization pass filters it.
func (s *Server) reportDeadVariant(c *gin.Context) {
	var req DeadVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if err := s.healthStore.MarkDead(req.VariantKey); err != nil {
		slog.Error("Failed to mark variant dead", "key", req.VariantKey, "error", err)
		errorResponse(c, http.StatusInternalServerError, "failed to mark variant dead")
		return
	}

	slog.Info("Variant marked dead", "key", req.VariantKey)
	c.JSON(http.StatusOK, gin.H{"status": "marked"})
}
