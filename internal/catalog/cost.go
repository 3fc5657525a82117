package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

// CostMap maps a seller SKU code to its cost price.
type CostMap map[string]decimal.Decimal

// Price returns the cost for a seller SKU code and whether it was listed.
func (m CostMap) Price(sellerSKU string) (decimal.Decimal, bool) {
	p, ok := m[strings.TrimSpace(sellerSKU)]
	return p, ok
}

// BuildCostMap reads the optional cost sheet. Cost headers are free-form,
// so columns are found by substring: the first column containing
// "seller_sku" or "sku_code", and the first containing "cost" or "price".
//
// A nil table yields an empty map and no issue. When either column cannot
// be found the map is empty and a warning describes what is missing.
// Unparseable or negative prices count as 0; the first listing of a SKU wins.
func BuildCostMap(t *table.Table, aliases schema.AliasSet) (CostMap, *types.Issue) {
	costs := make(CostMap)
	if t == nil {
		return costs, nil
	}

	skuAliases := aliases.Get(schema.FieldCostSheetSKU)
	priceAliases := aliases.Get(schema.FieldCostSheetPrice)

	skuCol, okSKU := schema.ResolveContaining(t, skuAliases...)
	priceCol, okPrice := schema.ResolveContaining(t, priceAliases...)
	if !okSKU || !okPrice {
		var missing []string
		if !okSKU {
			missing = append(missing, "seller SKU column"+schema.Hint(t, skuAliases...))
		}
		if !okPrice {
			missing = append(missing, "cost column"+schema.Hint(t, priceAliases...))
		}
		issue := types.NewIssue(types.StageCost, t.Name, types.SeverityWarning,
			"cost sheet ignored, could not find %s", strings.Join(missing, " or "))
		return costs, &issue
	}

	skuIdx := t.Index(skuCol)
	priceIdx := t.Index(priceCol)
	for _, row := range t.Rows {
		sku := strings.TrimSpace(row[skuIdx])
		if sku == "" {
			continue
		}
		if _, seen := costs[sku]; seen {
			continue
		}
		price, ok := schema.ParseAmount(row[priceIdx])
		if !ok || price.IsNegative() {
			price = decimal.Zero
		}
		costs[sku] = price
	}

	return costs, nil
}
