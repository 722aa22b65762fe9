package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestValidateSaleFieldsMissingSalePrice(t *testing.T) {
	err := validateSaleFields(19990000, true, 0, false)
	if err == nil {
		t.Fatal("expected validation error when saleEnabled=true and salePrice is missing")
	}
}

func TestValidateSaleFieldsSalePriceGreaterOrEqualPrice(t *testing.T) {
	tests := []float64{19990000, 20990000}
	for _, salePrice := range tests {
		err := validateSaleFields(19990000, true, salePrice, true)
		if err == nil {
			t.Fatalf("expected validation error for salePrice=%v", salePrice)
		}
	}
}

func TestNormalizeProductDocumentIncludesSaleFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "iPhone 15",
		"brand":       "Apple",
		"price":       19990000.0,
		"saleEnabled": true,
		"salePrice":   18490000.0,
		"stock":       5,
		"category":    []string{"Điện thoại"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if !product.SaleEnabled || product.SalePrice != 18490000 {
		t.Fatalf("expected sale fields to be preserved, got saleEnabled=%v salePrice=%v", product.SaleEnabled, product.SalePrice)
	}
	if !product.IsOnSale {
		t.Fatal("expected IsOnSale to be true")
	}
	if !product.InStock {
		t.Fatal("expected InStock to be true for stock=5")
	}
}

func TestNormalizeProductDocumentLegacyScalarCategory(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":     "Galaxy S24",
		"brand":    "Samsung",
		"price":    22990000.0,
		"stock":    0,
		"category": "Điện thoại",
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if len(product.Category) != 1 || product.Category[0] != "Điện thoại" {
		t.Fatalf("expected scalar category to be wrapped in a list, got %v", product.Category)
	}
	if product.InStock {
		t.Fatal("expected InStock to be false for stock=0")
	}
}

func TestProductJSONAlwaysIncludesSalePrice(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "iPhone 15 Pro Max",
		"brand":       "Apple",
		"price":       34990000.0,
		"saleEnabled": true,
		"salePrice":   32990000.0,
		"stock":       10,
		"category":    []string{"Điện thoại"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	body, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if !strings.Contains(jsonBody, "\"salePrice\":32990000") {
		t.Fatalf("expected salePrice in response json, got %s", jsonBody)
	}
	if !strings.Contains(jsonBody, "\"isOnSale\":true") {
		t.Fatalf("expected isOnSale=true in response json, got %s", jsonBody)
	}
}

func TestEffectiveProductPriceUsesSalePriceWhenOnSale(t *testing.T) {
	if got := effectiveProductPrice(19990000, true, 18490000); got != 18490000 {
		t.Fatalf("expected sale price 18490000, got %v", got)
	}
	if got := effectiveProductPrice(19990000, false, 18490000); got != 19990000 {
		t.Fatalf("expected regular price 19990000 when sale disabled, got %v", got)
	}
}
