package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/denisok6893-rgb/casa-match/internal/domain"
)

type ListingsListResponse struct {
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Total  int              `json:"total"`
	Items  []domain.Listing `json:"items"`
}

// GET /api/listings
func (s *Server) handleListingsList(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	limit, offset := parseLimitOffset(c, 20, 0)
	items, total, err := s.listings.ListListings(c.Request.Context(), agent, limit, offset)
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: list listings: %v", domain.ErrStore, err))
		return
	}
	if items == nil {
		items = []domain.Listing{}
	}
	c.JSON(http.StatusOK, ListingsListResponse{Limit: limit, Offset: offset, Total: total, Items: items})
}

type CreateListingRequest struct {
	Name                 string   `json:"name"`
	Status               string   `json:"status"`
	Price                float64  `json:"price"`
	Neighborhood         string   `json:"neighborhood"`
	City                 string   `json:"city"`
	RoomsTotal           int      `json:"rooms_total"`
	RoomsGroundFloor     int      `json:"rooms_ground_floor"`
	BathroomsTotal       int      `json:"bathrooms_total"`
	BathroomsGroundFloor int      `json:"bathrooms_ground_floor"`
	Garden               string   `json:"garden"`
	Amenities            []string `json:"amenities"`
	ImageURLs            []string `json:"image_urls"`
	Notes                string   `json:"notes"`
}

func (r CreateListingRequest) validate() error {
	if r.Name == "" || r.Neighborhood == "" {
		return fmt.Errorf("%w: name and neighborhood are required", domain.ErrValidation)
	}
	if r.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", domain.ErrValidation)
	}
	if !domain.ListingStatus(r.Status).Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, r.Status)
	}
	if r.Garden != "" && !domain.GardenSize(r.Garden).Valid() {
		return fmt.Errorf("%w: unknown garden size %q", domain.ErrValidation, r.Garden)
	}
	if r.RoomsTotal < 0 || r.RoomsGroundFloor < 0 || r.BathroomsTotal < 0 || r.BathroomsGroundFloor < 0 {
		return fmt.Errorf("%w: room and bathroom counts must be non-negative", domain.ErrValidation)
	}
	return nil
}

// POST /api/listings
// Creating a listing immediately runs suggestion matching so the agent
// sees which prospects the new listing fits.
func (s *Server) handleListingCreate(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := req.validate(); err != nil {
		s.renderError(c, err)
		return
	}

	garden := domain.GardenSize(req.Garden)
	if garden == "" {
		garden = domain.GardenNone
	}

	listing, err := s.listings.CreateListing(c.Request.Context(), domain.Listing{
		AgentID:              agent,
		Name:                 req.Name,
		Status:               domain.ListingStatus(req.Status),
		Price:                req.Price,
		Neighborhood:         req.Neighborhood,
		City:                 req.City,
		RoomsTotal:           req.RoomsTotal,
		RoomsGroundFloor:     req.RoomsGroundFloor,
		BathroomsTotal:       req.BathroomsTotal,
		BathroomsGroundFloor: req.BathroomsGroundFloor,
		Garden:               garden,
		Amenities:            req.Amenities,
		ImageURLs:            req.ImageURLs,
		Notes:                req.Notes,
	})
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: create listing: %v", domain.ErrStore, err))
		return
	}

	suggestions, err := s.svc.SuggestionsForListing(c.Request.Context(), listing.ID, agent)
	if err != nil {
		// The listing is created either way; suggestions are a bonus.
		s.log.Warn("suggestions for new listing failed", zap.String("listing_id", listing.ID), zap.Error(err))
		suggestions = []domain.ProspectSuggestion{}
	}
	if suggestions == nil {
		suggestions = []domain.ProspectSuggestion{}
	}

	c.JSON(http.StatusCreated, gin.H{
		"listing":             listing,
		"suggested_prospects": suggestions,
	})
}

// GET /api/listings/:id
func (s *Server) handleListingGet(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	listing, found, err := s.listings.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: get listing: %v", domain.ErrStore, err))
		return
	}
	if !found {
		s.renderError(c, domain.ErrNotFound)
		return
	}
	if listing.AgentID != agent {
		s.renderError(c, domain.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, listing)
}

type UpdateListingRequest struct {
	Name                 *string  `json:"name"`
	Status               *string  `json:"status"`
	Price                *float64 `json:"price"`
	Neighborhood         *string  `json:"neighborhood"`
	City                 *string  `json:"city"`
	RoomsTotal           *int     `json:"rooms_total"`
	RoomsGroundFloor     *int     `json:"rooms_ground_floor"`
	BathroomsTotal       *int     `json:"bathrooms_total"`
	BathroomsGroundFloor *int     `json:"bathrooms_ground_floor"`
	Garden               *string  `json:"garden"`
	Amenities            []string `json:"amenities"`
	ImageURLs            []string `json:"image_urls"`
	Notes                *string  `json:"notes"`
}

// PUT /api/listings/:id — partial update, nil fields keep their value.
func (s *Server) handleListingUpdate(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	listing, found, err := s.listings.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: get listing: %v", domain.ErrStore, err))
		return
	}
	if !found {
		s.renderError(c, domain.ErrNotFound)
		return
	}
	if listing.AgentID != agent {
		s.renderError(c, domain.ErrForbidden)
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	if req.Status != nil && !domain.ListingStatus(*req.Status).Valid() {
		s.renderError(c, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *req.Status))
		return
	}
	if req.Garden != nil && !domain.GardenSize(*req.Garden).Valid() {
		s.renderError(c, fmt.Errorf("%w: unknown garden size %q", domain.ErrValidation, *req.Garden))
		return
	}
	if req.Price != nil && *req.Price < 0 {
		s.renderError(c, fmt.Errorf("%w: price must be non-negative", domain.ErrValidation))
		return
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	applyString(&listing.Name, req.Name)
	applyString(&listing.Neighborhood, req.Neighborhood)
	applyString(&listing.City, req.City)
	applyString(&listing.Notes, req.Notes)
	applyInt(&listing.RoomsTotal, req.RoomsTotal)
	applyInt(&listing.RoomsGroundFloor, req.RoomsGroundFloor)
	applyInt(&listing.BathroomsTotal, req.BathroomsTotal)
	applyInt(&listing.BathroomsGroundFloor, req.BathroomsGroundFloor)
	if req.Status != nil {
		listing.Status = domain.ListingStatus(*req.Status)
	}
	if req.Garden != nil {
		listing.Garden = domain.GardenSize(*req.Garden)
	}
	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.Amenities != nil {
		listing.Amenities = req.Amenities
	}
	if req.ImageURLs != nil {
		listing.ImageURLs = req.ImageURLs
	}

	if err := s.listings.UpdateListing(c.Request.Context(), listing); err != nil {
		s.renderError(c, fmt.Errorf("%w: update listing: %v", domain.ErrStore, err))
		return
	}
	c.JSON(http.StatusOK, listing)
}

// DELETE /api/listings/:id — soft delete.
func (s *Server) handleListingDelete(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	listing, found, err := s.listings.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: get listing: %v", domain.ErrStore, err))
		return
	}
	if !found {
		s.renderError(c, domain.ErrNotFound)
		return
	}
	if listing.AgentID != agent {
		s.renderError(c, domain.ErrForbidden)
		return
	}

	if _, err := s.listings.SoftDeleteListing(c.Request.Context(), listing.ID); err != nil {
		s.renderError(c, fmt.Errorf("%w: delete listing: %v", domain.ErrStore, err))
		return
	}
	c.Status(http.StatusNoContent)
}

func parseLimitOffset(c *gin.Context, defLimit, defOffset int) (int, int) {
	limit := defLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 200 {
		limit = 200
	}

	offset := defOffset
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
