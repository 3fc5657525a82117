package cmd

import (
	"testing"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/pipeline"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/source"
)

func runWithSeller(body string) *pipeline.Outcome {
	seller := source.NewBytes("seller.csv", []byte(body), config.Default().CSVSettings)
	return pipeline.Run(pipeline.Inputs{Seller: seller}, pipeline.Options{})
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name    string
		out     *pipeline.Outcome
		wantErr bool
	}{
		{"usable listing", runWithSeller("sku_id,sku_code,seller_sku_code\n1,a,b\n"), false},
		{"missing columns", runWithSeller("sku,code\n1,2\n"), true},
		{"unreadable listing", pipeline.Run(pipeline.Inputs{
			Seller: source.NewBytes("seller.pdf", []byte("x"), config.Default().CSVSettings),
		}, pipeline.Options{}), true},
	}
	for _, tt := range tests {
		if err := exitError(tt.out); (err != nil) != tt.wantErr {
			t.Errorf("%s: exitError = %v, want error %v", tt.name, err, tt.wantErr)
		}
	}
}
