package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storefront/internal/product/domain"
	"gorm.io/gorm"
)

const listingSelect = `p.id, p.name, p.price, p.author_name, p.owner_id,
	COUNT(CASE WHEN r.liked THEN 1 END) AS annotated_likes,
	AVG(r.rate) AS rating`

const listingGroup = "p.id, p.name, p.price, p.author_name, p.owner_id"

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) List(ctx context.Context, filter domain.ListFilter) ([]domain.Listing, error) {
	stmt := r.listingStmt(ctx)

	if filter.Price != nil {
		stmt = stmt.Where("p.price = ?", *filter.Price)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where("(LOWER(p.name) LIKE ? OR LOWER(p.author_name) LIKE ?)", like, like)
	}

	stmt = stmt.Order(orderClause(filter.Ordering))

	var items []domain.Listing
	if err := stmt.Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) GetListing(ctx context.Context, id snowflake.ID) (*domain.Listing, error) {
	var item domain.Listing
	err := r.listingStmt(ctx).Where("p.id = ?", id).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Exists(ctx context.Context, id snowflake.ID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repo) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repo) Update(ctx context.Context, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":        product.Name,
			"price":       product.Price,
			"author_name": product.AuthorName,
			"updated_at":  product.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error
}

func (r *repo) listingStmt(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("products AS p").
		Select(listingSelect).
		Joins("LEFT JOIN user_product_relations AS r ON r.product_id = p.id").
		Group(listingGroup)
}

// orderClause maps an already-validated ordering value onto the joined query.
// Unknown values fall back to a stable id order.
func orderClause(ordering string) string {
	switch strings.TrimSpace(ordering) {
	case "price":
		return "p.price ASC, p.id ASC"
	case "-price":
		return "p.price DESC, p.id ASC"
	case "author_name":
		return "p.author_name ASC, p.id ASC"
	case "-author_name":
		return "p.author_name DESC, p.id ASC"
	default:
		return "p.id ASC"
	}
}
