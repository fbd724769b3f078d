package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	relationdomain "github.com/smallbiznis/storefront/internal/relation/domain"
)

type patchRelationRequest struct {
	Like        *bool           `json:"like"`
	InBookmarks *bool           `json:"in_bookmarks"`
	Rate        json.RawMessage `json:"rate"`
}

func (s *Server) PatchRelation(c *gin.Context) {
	var req patchRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rate, rateSet, err := parseNullableRate(req.Rate)
	if err != nil {
		AbortWithError(c, relationdomain.ErrInvalidRate)
		return
	}

	resp, err := s.relationSvc.Patch(c.Request.Context(), c.Param("id"), relationdomain.PatchRequest{
		Like:        req.Like,
		InBookmarks: req.InBookmarks,
		Rate:        rate,
		RateSet:     rateSet,
	})
	if err != nil {
		s.recordRelationUpsert(c, "error")
		AbortWithError(c, err)
		return
	}

	s.recordRelationUpsert(c, "ok")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetRelation(c *gin.Context) {
	resp, err := s.relationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) recordRelationUpsert(c *gin.Context, outcome string) {
	if s.obsMetrics == nil {
		return
	}
	s.obsMetrics.RecordRelationUpsert(c.Request.Context(), outcome)
}

// parseNullableRate keeps the absent and null cases apart so a rating can be
// withdrawn with an explicit null.
func parseNullableRate(raw json.RawMessage) (*int16, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var value int16
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, err
	}
	return &value, true, nil
}
