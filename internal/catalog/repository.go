package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/rasayana/storefront/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Filters are the catalog query parameters the storefront UI sends. Zero
// values mean "not set" and are normalized to the defaults the frontend
// expects.
type Filters struct {
	Page            int
	PerPage         int
	SortBy          string // created_at | name | price
	SortOrder       string // asc | desc
	Search          string
	CategoryID      int64
	HealthBenefitID int64
}

func (f Filters) normalized() Filters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	switch f.SortBy {
	case "created_at", "name", "price":
	default:
		f.SortBy = "created_at"
	}
	if strings.ToLower(f.SortOrder) == "asc" {
		f.SortOrder = "ASC"
	} else {
		f.SortOrder = "DESC"
	}
	return f
}

// ProductPage is one page of catalog results plus the paging totals the
// frontend renders.
type ProductPage struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Pages    int               `json:"pages"`
}

type Repository struct {
	db *sql.DB
}

type RepoInterface interface {
	ListProducts(ctx context.Context, filters Filters) (*ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListHealthBenefits(ctx context.Context) ([]*domain.HealthBenefit, error)
	Close() error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) ListProducts(ctx context.Context, filters Filters) (*ProductPage, error) {
	f := filters.normalized()

	var where []string
	var params []any
	if f.Search != "" {
		where = append(where, "name LIKE ?")
		params = append(params, "%"+f.Search+"%")
	}
	if f.CategoryID > 0 {
		where = append(where, "category_id = ?")
		params = append(params, f.CategoryID)
	}
	if f.HealthBenefitID > 0 {
		where = append(where, "health_benefit_id = ?")
		params = append(params, f.HealthBenefitID)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	// Sort column and order come from a whitelist, never from raw input.
	query := fmt.Sprintf(`
		SELECT id, name, slug, price, sale_price, currency_symbol, image_url, category_id, health_benefit_id, created_at
		FROM products
		%s
		ORDER BY %s %s
		LIMIT ? OFFSET ?
	`, whereClause, f.SortBy, f.SortOrder)

	offset := (f.Page - 1) * f.PerPage
	rows, err := r.db.QueryContext(ctx, query, append(params, f.PerPage, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	pages := 1
	if total > 0 {
		pages = (total + f.PerPage - 1) / f.PerPage
	}

	return &ProductPage{Products: products, Total: total, Pages: pages}, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, slug, price, sale_price, currency_symbol, image_url, category_id, health_benefit_id, created_at
		FROM products
		WHERE id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	defer rows.Close()

	var product *domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		product = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

func (r *Repository) ListHealthBenefits(ctx context.Context) ([]*domain.HealthBenefit, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM health_benefits ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query health benefits: %w", err)
	}
	defer rows.Close()

	var benefits []*domain.HealthBenefit
	for rows.Next() {
		b := &domain.HealthBenefit{}
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("failed to scan health benefit: %w", err)
		}
		benefits = append(benefits, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return benefits, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func scanProduct(rows *sql.Rows) (*domain.Product, error) {
	p := &domain.Product{}
	var salePrice sql.NullFloat64
	var imageURL sql.NullString
	var categoryID, healthBenefitID sql.NullInt64

	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Price,
		&salePrice,
		&p.CurrencySymbol,
		&imageURL,
		&categoryID,
		&healthBenefitID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if salePrice.Valid {
		p.SalePrice = &salePrice.Float64
	}
	if imageURL.Valid {
		p.ImageURL = imageURL.String
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	if healthBenefitID.Valid {
		p.HealthBenefitID = &healthBenefitID.Int64
	}
	return p, nil
}
