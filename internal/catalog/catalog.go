// =============================================================================
// Order Settlement Reconciler - Catalog Mapper
// =============================================================================
//
// The catalog maps a marketplace product id to the seller's own SKU codes.
// It is built once per run from the seller listing and consulted by every
// shipment merge.
//
// REQUIRED COLUMNS:
//   - product id       (sku_id / "sku id")
//   - sku code         (sku_code)
//   - seller sku code  (seller_sku_code)
//
// Missing any of them is fatal for the merge stage: without the catalog no
// shipment can be enriched, so the caller aborts merging entirely.
//
// DUPLICATES:
//   The listing is keyed by product id. When a product id appears more than
//   once, the first row wins and later rows are dropped, not merged.
//
// =============================================================================

package catalog

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

// =============================================================================
// TYPES
// =============================================================================

// Entry is one product of the seller listing.
type Entry struct {
	ProductID     string
	SKUCode       string
	SellerSKUCode string
}

// Catalog is the de-duplicated product id lookup.
type Catalog struct {
	entries    []Entry
	byID       map[string]int
	duplicates int
	source     string
}

// MissingColumnsError lists every required field the seller listing lacks.
type MissingColumnsError struct {
	Source  string
	Missing []schema.Field
	Hints   []string
}

// Error implements the error interface.
func (e *MissingColumnsError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		parts[i] = string(f)
		if i < len(e.Hints) && e.Hints[i] != "" {
			parts[i] += e.Hints[i]
		}
	}
	return fmt.Sprintf("%s: %v: %s", e.Source, types.ErrMissingCatalogColumns, strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match types.ErrMissingCatalogColumns.
func (e *MissingColumnsError) Unwrap() error {
	return types.ErrMissingCatalogColumns
}

// =============================================================================
// BUILD
// =============================================================================

// Build creates the catalog from a seller listing.
//
// PARAMETERS:
//   - t: The seller listing table.
//   - aliases: Column aliases; nil uses the built-in set.
//
// RETURNS:
//   - The catalog.
//   - A *MissingColumnsError if any of the three required columns is absent.
func Build(t *table.Table, aliases schema.AliasSet) (*Catalog, error) {
	if t == nil {
		return nil, &MissingColumnsError{
			Source:  "seller listing",
			Missing: []schema.Field{schema.FieldProductID, schema.FieldSKUCode, schema.FieldSellerSKUCode},
		}
	}

	required := []schema.Field{schema.FieldProductID, schema.FieldSKUCode, schema.FieldSellerSKUCode}
	resolved := make(map[schema.Field]string, len(required))
	missing := &MissingColumnsError{Source: t.Name}

	for _, f := range required {
		col, ok := schema.ResolveField(t, aliases, f)
		if !ok {
			missing.Missing = append(missing.Missing, f)
			missing.Hints = append(missing.Hints, schema.Hint(t, aliases.Get(f)...))
			continue
		}
		resolved[f] = col
	}
	if len(missing.Missing) > 0 {
		return nil, missing
	}

	idIdx := t.Index(resolved[schema.FieldProductID])
	skuIdx := t.Index(resolved[schema.FieldSKUCode])
	sellerIdx := t.Index(resolved[schema.FieldSellerSKUCode])

	c := &Catalog{
		byID:   make(map[string]int, t.Len()),
		source: t.Name,
	}
	for _, row := range t.Rows {
		id := schema.CanonicalID(row[idIdx])
		if _, seen := c.byID[id]; seen {
			c.duplicates++
			continue
		}
		c.byID[id] = len(c.entries)
		c.entries = append(c.entries, Entry{
			ProductID:     id,
			SKUCode:       strings.TrimSpace(row[skuIdx]),
			SellerSKUCode: strings.TrimSpace(row[sellerIdx]),
		})
	}

	return c, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Lookup returns the entry for a product id. The id is canonicalized first,
// so "100.0" finds the entry listed as "100".
func (c *Catalog) Lookup(productID string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.byID[schema.CanonicalID(productID)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns the entries in listing order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of distinct product ids.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Duplicates returns how many listing rows were dropped as repeats.
func (c *Catalog) Duplicates() int {
	if c == nil {
		return 0
	}
	return c.duplicates
}

// Source returns the name of the listing the catalog was built from.
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Table renders the catalog as the "SKU Mapping" sheet.
func (c *Catalog) Table() *table.Table {
	rows := make([][]string, 0, c.Len())
	for _, e := range c.Entries() {
		rows = append(rows, []string{e.ProductID, e.SKUCode, e.SellerSKUCode})
	}
	return table.New("SKU Mapping", []string{"sku_id", "sku_code", "seller_sku_code"}, rows)
}
