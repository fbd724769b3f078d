package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/product/repository"
	relationdomain "github.com/smallbiznis/storefront/internal/relation/domain"
	"github.com/smallbiznis/storefront/internal/usercontext"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCreateRequiresIdentity(t *testing.T) {
	svc, _, _ := setupProductService(t)

	price := decimal.RequireFromString("100.00")
	_, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Book", Price: &price})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreateAssignsOwnerAndSerializesPrice(t *testing.T) {
	svc, node, db := setupProductService(t)
	owner := node.Generate()
	ctx := asUser(owner, false)

	price := decimal.RequireFromString("1500")
	resp, err := svc.Create(ctx, domain.CreateRequest{Name: "Clean Code", Price: &price})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if resp.Price != "1500.00" {
		t.Fatalf("expected price 1500.00, got %s", resp.Price)
	}
	if resp.AnnotatedLikes != 0 || resp.Rating != nil {
		t.Fatalf("expected empty aggregates, got %+v", resp)
	}

	var stored domain.Product
	if err := db.First(&stored, "name = ?", "Clean Code").Error; err != nil {
		t.Fatalf("load stored: %v", err)
	}
	if stored.OwnerID == nil || *stored.OwnerID != owner {
		t.Fatalf("expected owner %s, got %+v", owner, stored.OwnerID)
	}
}

func TestCreateRejectsBadPrice(t *testing.T) {
	svc, node, _ := setupProductService(t)
	ctx := asUser(node.Generate(), false)

	for _, raw := range []string{"1.999", "-5.00", "100000.00"} {
		price := decimal.RequireFromString(raw)
		_, err := svc.Create(ctx, domain.CreateRequest{Name: "Book", Price: &price})
		if !errors.Is(err, domain.ErrInvalidPrice) {
			t.Fatalf("price %s: expected ErrInvalidPrice, got %v", raw, err)
		}
	}

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Book"})
	if !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("missing price: expected ErrInvalidPrice, got %v", err)
	}
}

func TestUpdateOwnershipMatrix(t *testing.T) {
	svc, node, db := setupProductService(t)
	owner := node.Generate()
	other := node.Generate()
	staff := node.Generate()

	p := seedOwnedProduct(t, db, node, "Owned", &owner)
	orphan := seedOwnedProduct(t, db, node, "Orphan", nil)

	name := "Renamed"
	price := decimal.RequireFromString("25.00")
	req := func(id snowflake.ID) domain.UpdateRequest {
		return domain.UpdateRequest{ID: id.String(), Name: &name, Price: &price, Partial: true}
	}

	if _, err := svc.Update(asUser(owner, false), req(p.ID)); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if _, err := svc.Update(asUser(staff, true), req(p.ID)); err != nil {
		t.Fatalf("staff update: %v", err)
	}
	if _, err := svc.Update(asUser(other, false), req(p.ID)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger update: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(context.Background(), req(p.ID)); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous update: expected ErrUnauthenticated, got %v", err)
	}

	// An ownerless product is writable by staff only.
	if _, err := svc.Update(asUser(other, false), req(orphan.ID)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("orphan by user: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(asUser(staff, true), req(orphan.ID)); err != nil {
		t.Fatalf("orphan by staff: %v", err)
	}
}

func TestUpdateFullReplacesAuthor(t *testing.T) {
	svc, node, db := setupProductService(t)
	owner := node.Generate()

	p := seedOwnedProduct(t, db, node, "Titled", &owner)
	db.Model(p).Update("author_name", "Old Author")

	name := "Titled"
	price := decimal.RequireFromString("10.00")
	resp, err := svc.Update(asUser(owner, false), domain.UpdateRequest{
		ID:    p.ID.String(),
		Name:  &name,
		Price: &price,
	})
	if err != nil {
		t.Fatalf("full update: %v", err)
	}
	if resp.AuthorName != nil {
		t.Fatalf("full update should clear omitted author, got %v", *resp.AuthorName)
	}
}

func TestUpdatePartialKeepsOmittedFields(t *testing.T) {
	svc, node, db := setupProductService(t)
	owner := node.Generate()

	p := seedOwnedProduct(t, db, node, "Keep Me", &owner)
	price := decimal.RequireFromString("42.00")
	resp, err := svc.Update(asUser(owner, false), domain.UpdateRequest{
		ID:      p.ID.String(),
		Price:   &price,
		Partial: true,
	})
	if err != nil {
		t.Fatalf("partial update: %v", err)
	}
	if resp.Name != "Keep Me" {
		t.Fatalf("partial update changed name: %s", resp.Name)
	}
	if resp.Price != "42.00" {
		t.Fatalf("expected price 42.00, got %s", resp.Price)
	}
}

func TestDeleteOwnership(t *testing.T) {
	svc, node, db := setupProductService(t)
	owner := node.Generate()
	other := node.Generate()

	p := seedOwnedProduct(t, db, node, "Target", &owner)

	if err := svc.Delete(asUser(other, false), p.ID.String()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger delete: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(asUser(owner, false), p.ID.String()); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(asUser(owner, false), p.ID.String()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestGetUnknownID(t *testing.T) {
	svc, node, _ := setupProductService(t)

	if _, err := svc.Get(context.Background(), "not-a-number"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("malformed id: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), node.Generate().String()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing id: expected ErrNotFound, got %v", err)
	}
}

func TestListRejectsUnknownOrdering(t *testing.T) {
	svc, _, _ := setupProductService(t)

	_, err := svc.List(context.Background(), domain.ListRequest{Ordering: "name"})
	if !errors.Is(err, domain.ErrInvalidOrdering) {
		t.Fatalf("expected ErrInvalidOrdering, got %v", err)
	}
}

func TestListRejectsMalformedPrice(t *testing.T) {
	svc, _, _ := setupProductService(t)

	_, err := svc.List(context.Background(), domain.ListRequest{Price: "abc"})
	if !errors.Is(err, domain.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func setupProductService(t *testing.T) (domain.Service, *snowflake.Node, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := db.AutoMigrate(&domain.Product{}, &relationdomain.Relation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	svc := New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.New(db),
	})
	return svc, node, db
}

func asUser(id snowflake.ID, staff bool) context.Context {
	return usercontext.WithIdentity(context.Background(), usercontext.Identity{UserID: id, IsStaff: staff})
}

func seedOwnedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, owner *snowflake.ID) *domain.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &domain.Product{
		ID:        node.Generate(),
		Name:      name,
		Price:     decimal.RequireFromString("10.00"),
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}
