package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/relation/domain"
	"github.com/smallbiznis/storefront/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Products productdomain.Repository
}

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	products productdomain.Repository
	genID    *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("relation.service"),
		repo:     p.Repo,
		products: p.Products,
		genID:    p.GenID,
	}
}

func (s *Service) Patch(ctx context.Context, productID string, req domain.PatchRequest) (*domain.Response, error) {
	// Validate before touching storage so a bad rate never creates a row.
	if req.RateSet && req.Rate != nil && (*req.Rate < 1 || *req.Rate > 5) {
		return nil, domain.ErrInvalidRate
	}

	identity, ok := usercontext.IdentityFromContext(ctx)
	if !ok {
		return nil, productdomain.ErrUnauthenticated
	}

	pid, err := s.resolveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	relation, err := s.repo.GetOrCreate(ctx, identity.UserID, pid, s.genID.Generate)
	if err != nil {
		return nil, err
	}

	if req.Like != nil {
		relation.Liked = *req.Like
	}
	if req.InBookmarks != nil {
		relation.InBookmarks = *req.InBookmarks
	}
	if req.RateSet {
		relation.Rate = req.Rate
	}
	relation.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, relation); err != nil {
		return nil, err
	}

	s.log.Debug("relation patched",
		zap.String("user_id", identity.UserID.String()),
		zap.String("product_id", pid.String()),
	)

	resp := toResponse(relation)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, productID string) (*domain.Response, error) {
	identity, ok := usercontext.IdentityFromContext(ctx)
	if !ok {
		return nil, productdomain.ErrUnauthenticated
	}

	pid, err := s.resolveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	relation, err := s.repo.FindByUserAndProduct(ctx, identity.UserID, pid)
	if err != nil {
		return nil, err
	}
	if relation == nil {
		// Reading an untouched product reports defaults without creating a row.
		return &domain.Response{ProductID: pid.String()}, nil
	}

	resp := toResponse(relation)
	return &resp, nil
}

// resolveProduct parses the path id and checks the product exists. Both
// failure modes read as a missing product to the caller.
func (s *Service) resolveProduct(ctx context.Context, raw string) (snowflake.ID, error) {
	pid, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, productdomain.ErrNotFound
	}
	exists, err := s.products.Exists(ctx, pid)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, productdomain.ErrNotFound
	}
	return pid, nil
}

func toResponse(relation *domain.Relation) domain.Response {
	return domain.Response{
		ProductID:   relation.ProductID.String(),
		Like:        relation.Liked,
		InBookmarks: relation.InBookmarks,
		Rate:        relation.Rate,
	}
}
