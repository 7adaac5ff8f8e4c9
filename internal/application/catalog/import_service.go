package catalog

import (
	"context"
	"fmt"
	"strings"

	identityapp "github.com/commerce/backoffice/internal/application/identity"
	"github.com/commerce/backoffice/internal/domain/activity"
	"github.com/commerce/backoffice/internal/domain/catalog"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/commerce/backoffice/internal/domain/shared/valueobject"
)

// ProductRow is one row of a bulk product import. Price is a display-unit
// string ("12.34") parsed into minor units during import.
type ProductRow struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	SKU   string `json:"sku"`
	Price string `json:"price"`
	Stock int64  `json:"stock"`
}

// RowError reports one failed import row. Row numbers are 1-based over the
// submitted list.
type RowError struct {
	Row   int    `json:"row"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ImportResult summarizes a bulk import
type ImportResult struct {
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

// ImportService handles bulk product creation. Each row is created
// independently; a bad row is reported and skipped, it never aborts the
// rest of the batch. This is a deliberate best-effort policy, distinct from
// the all-or-nothing semantics of order creation.
type ImportService struct {
	products   catalog.ProductRepository
	activities activity.Repository
	gate       identityapp.Gate
}

// NewImportService creates a new ImportService
func NewImportService(products catalog.ProductRepository, activities activity.Repository, gate identityapp.Gate) *ImportService {
	return &ImportService{
		products:   products,
		activities: activities,
		gate:       gate,
	}
}

// BulkImportProducts creates one single-variant product per row
func (s *ImportService) BulkImportProducts(ctx context.Context, actor identity.Actor, rows []ProductRow) (*ImportResult, error) {
	if err := s.gate.Authorize(ctx, actor, identity.PermProductImport); err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]RowError, 0)}
	for i, row := range rows {
		if err := s.importRow(ctx, actor, row); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: i + 1, Name: row.Name, Error: err.Error()})
			continue
		}
		result.Success++
	}

	entry, err := activity.NewEntry(actor.TenantID, actor.TenantID, actor.UserID, activity.EntryTypeProductImported,
		fmt.Sprintf("Bulk import finished: %d succeeded, %d failed", result.Success, result.Failed),
		activity.Metadata{"success": result.Success, "failed": result.Failed})
	if err == nil {
		_ = s.activities.Save(ctx, entry)
	}

	return result, nil
}

func (s *ImportService) importRow(ctx context.Context, actor identity.Actor, row ProductRow) error {
	price, err := valueobject.ParseMoney(strings.TrimSpace(row.Price))
	if err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	if price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if row.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}

	slug := row.Slug
	if slug == "" {
		slug = slugify(row.Name)
	}

	exists, err := s.products.ExistsBySlug(ctx, actor.TenantID, slug)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("slug %q already exists", slug)
	}

	product, err := catalog.NewProduct(actor.TenantID, row.Name, slug)
	if err != nil {
		return err
	}
	sku := row.SKU
	if sku == "" {
		sku = strings.ToUpper(slug)
	}
	if _, err := product.AddVariant(sku, row.Name, price.MinorUnits(), row.Stock); err != nil {
		return err
	}

	return s.products.Save(ctx, product)
}

// slugify derives a URL slug from a product name
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
