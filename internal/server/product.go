package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
)

type createProductRequest struct {
	Name       string           `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	AuthorName *string          `json:"author_name"`
}

type updateProductRequest struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	AuthorName json.RawMessage  `json:"author_name"`
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		Price    string `form:"price"`
		Search   string `form:"search"`
		Ordering string `form:"ordering"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		Price:    strings.TrimSpace(query.Price),
		Search:   strings.TrimSpace(query.Search),
		Ordering: strings.TrimSpace(query.Ordering),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), productdomain.CreateRequest{
		Name:       strings.TrimSpace(req.Name),
		Price:      req.Price,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		s.recordProductWrite(c, "create", "error")
		AbortWithError(c, err)
		return
	}

	s.recordProductWrite(c, "create", "ok")
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	s.updateProduct(c, false)
}

func (s *Server) PatchProduct(c *gin.Context) {
	s.updateProduct(c, true)
}

func (s *Server) updateProduct(c *gin.Context, partial bool) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	author, authorSet, err := parseNullableString(req.AuthorName)
	if err != nil {
		AbortWithError(c, newValidationError("author_name", "invalid_author_name", "invalid author_name"))
		return
	}

	resp, err := s.productSvc.Update(c.Request.Context(), productdomain.UpdateRequest{
		ID:         c.Param("id"),
		Name:       req.Name,
		Price:      req.Price,
		AuthorName: author,
		AuthorSet:  authorSet,
		Partial:    partial,
	})
	if err != nil {
		s.recordProductWrite(c, "update", "error")
		AbortWithError(c, err)
		return
	}

	s.recordProductWrite(c, "update", "ok")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.recordProductWrite(c, "delete", "error")
		AbortWithError(c, err)
		return
	}
	s.recordProductWrite(c, "delete", "ok")
	c.Status(http.StatusNoContent)
}

func (s *Server) recordProductWrite(c *gin.Context, operation, outcome string) {
	if s.obsMetrics == nil {
		return
	}
	s.obsMetrics.RecordProductWrite(c.Request.Context(), operation, outcome)
}

// parseNullableString distinguishes an absent JSON field from an explicit
// null. It returns the value, whether the field was present, and a parse
// error for non-string values.
func parseNullableString(raw json.RawMessage) (*string, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, err
	}
	return &value, true, nil
}
