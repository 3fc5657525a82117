package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/server"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.DevMode = true
	return server.New(cfg, nil, nil, "test").Handler()
}

type upload struct {
	field, name, body string
}

func multipartRequest(t *testing.T, path string, files []upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte(f.body))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newServer(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" || resp["version"] != "test" {
		t.Fatalf("resp = %v", resp)
	}
}

func TestReconcileReturnsWorkbook(t *testing.T) {
	req := multipartRequest(t, "/api/reconcile", []upload{
		{"seller", "Seller Listings.csv", "sku_id,sku_code,seller_sku_code\n100,S1,SS1\n"},
		{"packed", "Packed.csv", "order_id,sku_id\n500,100\n"},
		{"settlement", "prepaid.csv", "order_release_id,settled_amount\n500,30\n"},
		{"settlement", "postpaid.csv", "order_release_id,unsettled_amount\n500,70\n"},
	})
	w := httptest.NewRecorder()
	newServer(t).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Run-Id") == "" {
		t.Fatalf("missing X-Run-Id header")
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Final Report")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("final report rows = %q", rows)
	}
	last := rows[1][len(rows[1])-1]
	if last != "100" {
		t.Fatalf("total payment = %q, want 100", last)
	}
}

func TestReconcileRequiresSeller(t *testing.T) {
	req := multipartRequest(t, "/api/reconcile", []upload{
		{"packed", "Packed.csv", "order_id,sku_id\n500,100\n"},
	})
	w := httptest.NewRecorder()
	newServer(t).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestReconcileCatalogFailure(t *testing.T) {
	req := multipartRequest(t, "/api/reconcile", []upload{
		{"seller", "Seller Listings.csv", "sku,code\n1,2\n"},
	})
	w := httptest.NewRecorder()
	newServer(t).ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp struct {
		Code   string            `json:"code"`
		Issues []json.RawMessage `json:"issues"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "catalog_failed" || len(resp.Issues) == 0 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestValidateReportsColumns(t *testing.T) {
	req := multipartRequest(t, "/api/validate", []upload{
		{"seller", "seller.csv", "sku_id,sku_code,seller_sku_code\n1,a,b\n"},
		{"settlement", "notes.csv", "memo\nx\n"},
	})
	w := httptest.NewRecorder()
	newServer(t).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Valid        bool `json:"valid"`
		WarningCount int  `json:"warning_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Valid || resp.WarningCount != 1 {
		t.Fatalf("resp = %+v", resp)
	}
}
