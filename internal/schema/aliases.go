// =============================================================================
// Order Settlement Reconciler - Column Aliases
// =============================================================================
//
// Every semantic field the pipeline looks up is declared here once, as an
// ordered list of acceptable header spellings. Call sites never compare
// header strings themselves; they ask the resolver for a Field.
//
// CUSTOMIZATION:
//   Any list can be replaced from the `columns:` section of the YAML config
//   (see config.MainConfig.Columns). Replacing a list replaces it entirely.
//
// =============================================================================

package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Field names a semantic column.
type Field string

// Exact-alias fields.
const (
	FieldProductID       Field = "product_id"
	FieldSKUCode         Field = "sku_code"
	FieldSellerSKUCode   Field = "seller_sku_code"
	FieldOrderID         Field = "order_id"
	FieldOrderReleaseID  Field = "order_release_id"
	FieldSettledAmount   Field = "settled_amount"
	FieldUnsettledAmount Field = "unsettled_amount"
	FieldPackedDate      Field = "packed_date"
	FieldBrand           Field = "brand"
	FieldShipmentValue   Field = "shipment_value"
	FieldTaxAmount       Field = "tax_amount"
	FieldQuantity        Field = "quantity"
	FieldCostPrice       Field = "cost_price"
)

// Substring fields, used by the cost sheet where headers are unconstrained.
const (
	FieldCostSheetSKU   Field = "cost_sheet_sku"
	FieldCostSheetPrice Field = "cost_sheet_price"
)

// Aliases is an ordered list of acceptable spellings for one field.
type Aliases []string

// AliasSet maps each field to its aliases.
type AliasSet map[Field]Aliases

// DefaultAliases returns a fresh copy of the built-in alias table.
func DefaultAliases() AliasSet {
	return AliasSet{
		FieldProductID:       {"sku_id", "sku id", "product_id"},
		FieldSKUCode:         {"sku_code"},
		FieldSellerSKUCode:   {"seller_sku_code"},
		FieldOrderID:         {"order_id", "old_parent_order_id", "old_parent_id"},
		FieldOrderReleaseID:  {"order_release_id", "release_id"},
		FieldSettledAmount:   {"settled_amount"},
		FieldUnsettledAmount: {"unsettled_amount"},
		FieldPackedDate:      {"packed_date", "packed_on", "packing_date", "order_packed_date"},
		FieldBrand:           {"brand", "brand_name"},
		FieldShipmentValue:   {"shipment_value", "final_amount"},
		FieldTaxAmount:       {"tax_amount", "total_tax"},
		FieldQuantity:        {"quantity", "qty"},
		FieldCostPrice:       {"cost_price"},
		FieldCostSheetSKU:    {"seller_sku", "sku_code"},
		FieldCostSheetPrice:  {"cost", "price"},
	}
}

// Get returns the aliases for a field, falling back to the defaults when the
// set has no entry (a nil set behaves like DefaultAliases).
func (s AliasSet) Get(f Field) Aliases {
	if a, ok := s[f]; ok && len(a) > 0 {
		return a
	}
	return DefaultAliases()[f]
}

// WithOverrides returns a copy of s with the given lists replacing the
// built-in ones. Unknown field names are an error.
func (s AliasSet) WithOverrides(overrides map[string][]string) (AliasSet, error) {
	out := DefaultAliases()
	for f, a := range s {
		out[f] = append(Aliases(nil), a...)
	}

	known := DefaultAliases()
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := Field(name)
		if _, ok := known[f]; !ok {
			return nil, fmt.Errorf("unknown column field %q (known: %s)", name, strings.Join(KnownFields(), ", "))
		}
		if len(overrides[name]) == 0 {
			return nil, fmt.Errorf("column field %q has an empty alias list", name)
		}
		out[f] = append(Aliases(nil), overrides[name]...)
	}
	return out, nil
}

// KnownFields lists every field name, sorted.
func KnownFields() []string {
	defaults := DefaultAliases()
	names := make([]string, 0, len(defaults))
	for f := range defaults {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}
