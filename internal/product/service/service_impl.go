package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// priceCap mirrors the numeric(7,2) column: five integer digits.
var priceCap = decimal.New(1, 5)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("product.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		Search: strings.TrimSpace(req.Search),
	}

	if raw := strings.TrimSpace(req.Price); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, domain.ErrInvalidPrice
		}
		price = price.Round(2)
		filter.Price = &price
	}

	ordering := strings.TrimSpace(req.Ordering)
	switch ordering {
	case "", "price", "-price", "author_name", "-author_name":
		filter.Ordering = ordering
	default:
		return nil, domain.ErrInvalidOrdering
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	item, err := s.repo.GetListing(ctx, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	identity, ok := usercontext.IdentityFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	price, err := validatePrice(req.Price)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ownerID := identity.UserID
	p := &domain.Product{
		ID:         s.genID.Generate(),
		Name:       name,
		Price:      price,
		AuthorName: normalizeAuthor(req.AuthorName),
		OwnerID:    &ownerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("product created",
		zap.String("product_id", p.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)

	// A fresh product has no relations; aggregates are known without a query.
	resp := toResponse(&domain.Listing{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		AuthorName: p.AuthorName,
		OwnerID:    p.OwnerID,
	})
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	item, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.authorizeWrite(ctx, item.OwnerID); err != nil {
		return nil, err
	}

	if !req.Partial {
		if req.Name == nil {
			return nil, domain.ErrInvalidName
		}
		if req.Price == nil {
			return nil, domain.ErrInvalidPrice
		}
		item.AuthorName = normalizeAuthor(req.AuthorName)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Price != nil {
		price, err := validatePrice(req.Price)
		if err != nil {
			return nil, err
		}
		item.Price = price
	}
	if req.Partial && req.AuthorSet {
		item.AuthorName = normalizeAuthor(req.AuthorName)
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	listing, err := s.repo.GetListing(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(listing)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return domain.ErrNotFound
	}

	item, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.authorizeWrite(ctx, item.OwnerID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, productID)
}

// authorizeWrite implements the ownership predicate: staff may always write,
// otherwise the caller must equal the owner. A NULL owner matches nobody.
func (s *Service) authorizeWrite(ctx context.Context, ownerID *snowflake.ID) error {
	identity, ok := usercontext.IdentityFromContext(ctx)
	if !ok {
		return domain.ErrUnauthenticated
	}
	if identity.IsStaff {
		return nil
	}
	if ownerID == nil || *ownerID != identity.UserID {
		return domain.ErrForbidden
	}
	return nil
}

func validatePrice(price *decimal.Decimal) (decimal.Decimal, error) {
	if price == nil {
		return decimal.Decimal{}, domain.ErrInvalidPrice
	}
	if price.Exponent() < -2 {
		return decimal.Decimal{}, domain.ErrInvalidPrice
	}
	if price.IsNegative() || !price.Abs().LessThan(priceCap) {
		return decimal.Decimal{}, domain.ErrInvalidPrice
	}
	return price.Round(2), nil
}

func normalizeAuthor(author *string) *string {
	if author == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*author)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func toResponse(l *domain.Listing) domain.Response {
	resp := domain.Response{
		ID:             l.ID.String(),
		Name:           l.Name,
		Price:          l.Price.StringFixed(2),
		AuthorName:     l.AuthorName,
		AnnotatedLikes: l.AnnotatedLikes,
	}
	if l.Rating.Valid {
		rating := l.Rating.Decimal.Round(2).StringFixed(2)
		resp.Rating = &rating
	}
	return resp
}
