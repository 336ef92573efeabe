package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/denisok6893-rgb/casa-match/internal/domain"
)

type ProspectsListResponse struct {
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Total  int               `json:"total"`
	Items  []domain.Prospect `json:"items"`
}

// GET /api/prospects
func (s *Server) handleProspectsList(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	limit, offset := parseLimitOffset(c, 20, 0)
	items, total, err := s.prospects.ListProspects(c.Request.Context(), agent, limit, offset)
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: list prospects: %v", domain.ErrStore, err))
		return
	}
	if items == nil {
		items = []domain.Prospect{}
	}
	c.JSON(http.StatusOK, ProspectsListResponse{Limit: limit, Offset: offset, Total: total, Items: items})
}

type CreateProspectRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// POST /api/prospects
func (s *Server) handleProspectCreate(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}

	var req CreateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if req.Name == "" {
		s.renderError(c, fmt.Errorf("%w: name is required", domain.ErrValidation))
		return
	}
	if !domain.ProspectStatus(req.Status).Valid() {
		s.renderError(c, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, req.Status))
		return
	}

	prospect, err := s.prospects.CreateProspect(c.Request.Context(), domain.Prospect{
		AgentID: agent,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Status:  domain.ProspectStatus(req.Status),
		Notes:   req.Notes,
	})
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: create prospect: %v", domain.ErrStore, err))
		return
	}
	c.JSON(http.StatusCreated, prospect)
}

func (s *Server) prospectByID(c *gin.Context, agent string) (domain.Prospect, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: invalid prospect id", domain.ErrValidation))
		return domain.Prospect{}, false
	}

	prospect, found, err := s.prospects.GetProspect(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, fmt.Errorf("%w: get prospect: %v", domain.ErrStore, err))
		return domain.Prospect{}, false
	}
	if !found {
		s.renderError(c, domain.ErrNotFound)
		return domain.Prospect{}, false
	}
	if prospect.AgentID != agent {
		s.renderError(c, domain.ErrForbidden)
		return domain.Prospect{}, false
	}
	return prospect, true
}

// GET /api/prospects/:id
func (s *Server) handleProspectGet(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	prospect, ok := s.prospectByID(c, agent)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, prospect)
}

type UpdateProspectRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// PUT /api/prospects/:id — partial update.
func (s *Server) handleProspectUpdate(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	prospect, ok := s.prospectByID(c, agent)
	if !ok {
		return
	}

	var req UpdateProspectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if req.Status != nil && !domain.ProspectStatus(*req.Status).Valid() {
		s.renderError(c, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *req.Status))
		return
	}

	if req.Name != nil {
		prospect.Name = *req.Name
	}
	if req.Phone != nil {
		prospect.Phone = *req.Phone
	}
	if req.Email != nil {
		prospect.Email = *req.Email
	}
	if req.Status != nil {
		prospect.Status = domain.ProspectStatus(*req.Status)
	}
	if req.Notes != nil {
		prospect.Notes = *req.Notes
	}

	if err := s.prospects.UpdateProspect(c.Request.Context(), prospect); err != nil {
		s.renderError(c, fmt.Errorf("%w: update prospect: %v", domain.ErrStore, err))
		return
	}
	c.JSON(http.StatusOK, prospect)
}

// DELETE /api/prospects/:id
func (s *Server) handleProspectDelete(c *gin.Context) {
	agent, ok := agentID(c)
	if !ok {
		return
	}
	prospect, ok := s.prospectByID(c, agent)
	if !ok {
		return
	}

	if _, err := s.prospects.DeleteProspect(c.Request.Context(), prospect.ID); err != nil {
		s.renderError(c, fmt.Errorf("%w: delete prospect: %v", domain.ErrStore, err))
		return
	}
	c.Status(http.StatusNoContent)
}
