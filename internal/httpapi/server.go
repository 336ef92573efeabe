package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/casa-match/internal/domain"
)

// SearchService is the matching core as consumed by the transport.
type SearchService interface {
	Search(ctx context.Context, query, agentID string, prospectID *int64) ([]domain.ScoreResult, error)
	SuggestionsForListing(ctx context.Context, listingID, agentID string) ([]domain.ProspectSuggestion, error)
}

type ListingStore interface {
	CreateListing(ctx context.Context, l domain.Listing) (domain.Listing, error)
	GetListing(ctx context.Context, id string) (domain.Listing, bool, error)
	UpdateListing(ctx context.Context, l domain.Listing) error
	SoftDeleteListing(ctx context.Context, id string) (bool, error)
	ListListings(ctx context.Context, agentID string, limit, offset int) ([]domain.Listing, int, error)
}

type ProspectStore interface {
	CreateProspect(ctx context.Context, p domain.Prospect) (domain.Prospect, error)
	GetProspect(ctx context.Context, id int64) (domain.Prospect, bool, error)
	UpdateProspect(ctx context.Context, p domain.Prospect) error
	DeleteProspect(ctx context.Context, id int64) (bool, error)
	ListProspects(ctx context.Context, agentID string, limit, offset int) ([]domain.Prospect, int, error)
}

type Server struct {
	svc       SearchService
	listings  ListingStore
	prospects ProspectStore
	log       *zap.Logger
}

func NewServer(svc SearchService, listings ListingStore, prospects ProspectStore, log *zap.Logger) *Server {
	return &Server{svc: svc, listings: listings, prospects: prospects, log: log}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/search", s.handleSearch)

	api.GET("/listings", s.handleListingsList)
	api.POST("/listings", s.handleListingCreate)
	api.GET("/listings/:id", s.handleListingGet)
	api.PUT("/listings/:id", s.handleListingUpdate)
	api.DELETE("/listings/:id", s.handleListingDelete)
	api.GET("/listings/:id/suggested-prospects", s.handleSuggestedProspects)

	api.GET("/prospects", s.handleProspectsList)
	api.POST("/prospects", s.handleProspectCreate)
	api.GET("/prospects/:id", s.handleProspectGet)
	api.PUT("/prospects/:id", s.handleProspectUpdate)
	api.DELETE("/prospects/:id", s.handleProspectDelete)

	return r
}

// agentID identifies the requesting agent. A real deployment would put
// an auth middleware in front; the header keeps the contract explicit
// without one.
func agentID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-Agent-ID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Agent-ID header"})
		return "", false
	}
	return id, true
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrExtraction):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrStore):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("unhandled request error", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type SearchRequest struct {
	Message    string `json:"message"`
	ProspectID *int64 `json:"prospect_id"`
}

// POST /api/search
func (s *Server) handleSearch(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	results, err := s.svc.Search(c.Request.Context(), req.Message, agent, req.ProspectID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if results == nil {
		results = []domain.ScoreResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GET /api/listings/:id/suggested-prospects
func (s *Server) handleSuggestedProspects(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	suggestions, err := s.svc.SuggestionsForListing(c.Request.Context(), c.Param("id"), agent)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if suggestions == nil {
		suggestions = []domain.ProspectSuggestion{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
