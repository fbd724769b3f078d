package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storefront/internal/product/domain"
	relationdomain "github.com/smallbiznis/storefront/internal/relation/domain"
	"gorm.io/gorm"
)

func TestListAggregatesEmptyRelations(t *testing.T) {
	repo, node, db := setupProductRepo(t)
	ctx := context.Background()

	p := seedProduct(t, db, node, "Clean Code", "1500.00", strPtr("Robert Martin"))

	items, err := repo.List(ctx, domain.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(items))
	}
	got := items[0]
	if got.ID != p.ID {
		t.Fatalf("expected product %s, got %s", p.ID, got.ID)
	}
	if got.AnnotatedLikes != 0 {
		t.Fatalf("expected 0 annotated likes, got %d", got.AnnotatedLikes)
	}
	if got.Rating.Valid {
		t.Fatalf("expected null rating, got %s", got.Rating.Decimal)
	}
	if got.Price.StringFixed(2) != "1500.00" {
		t.Fatalf("expected price 1500.00, got %s", got.Price.StringFixed(2))
	}
}

func TestListAggregatesLikesAndRating(t *testing.T) {
	repo, node, db := setupProductRepo(t)
	ctx := context.Background()

	p := seedProduct(t, db, node, "Clean Code", "1500.00", nil)

	// Three relations: two likes, rates 3 and 4, one unrated bookmark.
	seedRelation(t, db, node, node.Generate(), p.ID, true, ratePtr(3))
	seedRelation(t, db, node, node.Generate(), p.ID, true, ratePtr(4))
	seedRelation(t, db, node, node.Generate(), p.ID, false, nil)

	item, err := repo.GetListing(ctx, p.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if item == nil {
		t.Fatal("expected listing, got nil")
	}
	if item.AnnotatedLikes != 2 {
		t.Fatalf("expected 2 annotated likes, got %d", item.AnnotatedLikes)
	}
	if !item.Rating.Valid {
		t.Fatal("expected rating, got null")
	}
	if got := item.Rating.Decimal.Round(2).StringFixed(2); got != "3.50" {
		t.Fatalf("expected rating 3.50, got %s", got)
	}
}

func TestListPriceFilter(t *testing.T) {
	repo, node, db := setupProductRepo(t)
	ctx := context.Background()

	seedProduct(t, db, node, "Book One", "1500.00", nil)
	want := seedProduct(t, db, node, "Book Two", "990.50", nil)

	price := decimal.RequireFromString("990.50")
	items, err := repo.List(ctx, domain.ListFilter{Price: &price})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != want.ID {
		t.Fatalf("expected only product %s, got %+v", want.ID, items)
	}
}

func TestListSearchMatchesNameAndAuthor(t *testing.T) {
	repo, node, db := setupProductRepo(t)
	ctx := context.Background()

	byName := seedProduct(t, db, node, "Go in Action", "3200.00", strPtr("William Kennedy"))
	byAuthor := seedProduct(t, db, node, "Concurrency Patterns", "2800.00", strPtr("Katherine Go"))
	seedProduct(t, db, node, "Unrelated", "100.00", strPtr("Someone Else"))

	items, err := repo.List(ctx, domain.ListFilter{Search: "go"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(items))
	}
	found := map[snowflake.ID]bool{}
	for _, item := range items {
		found[item.ID] = true
	}
	if !found[byName.ID] || !found[byAuthor.ID] {
		t.Fatalf("expected matches on name and author, got %+v", items)
	}
}

func TestListOrdering(t *testing.T) {
	repo, node, db := setupProductRepo(t)
	ctx := context.Background()

	cheap := seedProduct(t, db, node, "Cheap", "10.00", strPtr("Zeta"))
	mid := seedProduct(t, db, node, "Mid", "20.00", strPtr("Alpha"))
	dear := seedProduct(t, db, node, "Dear", "30.00", strPtr("Mike"))

	items, err := repo.List(ctx, domain.ListFilter{Ordering: "price"})
	if err != nil {
		t.Fatalf("list by price: %v", err)
	}
	assertOrder(t, items, cheap.ID, mid.ID, dear.ID)

	items, err = repo.List(ctx, domain.ListFilter{Ordering: "-price"})
	if err != nil {
		t.Fatalf("list by -price: %v", err)
	}
	assertOrder(t, items, dear.ID, mid.ID, cheap.ID)

	items, err = repo.List(ctx, domain.ListFilter{Ordering: "author_name"})
	if err != nil {
		t.Fatalf("list by author_name: %v", err)
	}
	assertOrder(t, items, mid.ID, dear.ID, cheap.ID)
}

func TestGetListingMissing(t *testing.T) {
	repo, node, _ := setupProductRepo(t)

	item, err := repo.GetListing(context.Background(), node.Generate())
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil listing, got %+v", item)
	}
}

func TestUpdatePersistsFields(t *testing.T) {
	repo, node, _ := setupProductRepo(t)
	ctx := context.Background()

	p := &domain.Product{
		ID:        node.Generate(),
		Name:      "Old Name",
		Price:     decimal.RequireFromString("1.00"),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	p.Name = "New Name"
	p.Price = decimal.RequireFromString("2.50")
	p.AuthorName = strPtr("Someone")
	p.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.Name != "New Name" || got.Price.StringFixed(2) != "2.50" {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.AuthorName == nil || *got.AuthorName != "Someone" {
		t.Fatalf("author not persisted: %+v", got.AuthorName)
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	repo, node, db := setupProductRepo(t)
	ctx := context.Background()

	p := seedProduct(t, db, node, "Short Lived", "5.00", nil)
	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	exists, err := repo.Exists(ctx, p.ID)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("expected product gone after delete")
	}
}

func assertOrder(t *testing.T, items []domain.Listing, want ...snowflake.ID) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("expected %d listings, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, items[i].ID)
		}
	}
}

func setupProductRepo(t *testing.T) (domain.Repository, *snowflake.Node, *gorm.DB) {
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
	return New(db), node, db
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, name, price string, author *string) *domain.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &domain.Product{
		ID:         node.Generate(),
		Name:       name,
		Price:      decimal.RequireFromString(price),
		AuthorName: author,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedRelation(t *testing.T, db *gorm.DB, node *snowflake.Node, userID, productID snowflake.ID, liked bool, rate *int16) {
	t.Helper()
	now := time.Now().UTC()
	rel := &relationdomain.Relation{
		ID:        node.Generate(),
		UserID:    userID,
		ProductID: productID,
		Liked:     liked,
		Rate:      rate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(rel).Error; err != nil {
		t.Fatalf("seed relation: %v", err)
	}
}

func strPtr(s string) *string { return &s }

func ratePtr(v int16) *int16 { return &v }
