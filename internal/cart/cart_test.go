package cart

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestCart() Cart {
	return New("cart-1", "user-1", testNow)
}

func iphoneLine(qty int, color, storage string) Item {
	return Item{
		ProductID:         "p-iphone15",
		Name:              "iPhone 15",
		Brand:             "Apple",
		UnitPrice:         19990000,
		OriginalUnitPrice: 22990000,
		Quantity:          qty,
		SelectedColor:     color,
		SelectedStorage:   storage,
	}
}

func assertDerivedTotals(t *testing.T, c Cart) {
	t.Helper()

	total := 0.0
	count := 0
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
		count += item.Quantity
	}
	if c.Total != total {
		t.Fatalf("total mismatch: cart says %v, items sum to %v", c.Total, total)
	}
	if c.ItemCount != count {
		t.Fatalf("itemCount mismatch: cart says %d, items sum to %d", c.ItemCount, count)
	}
}

func TestVariantKey(t *testing.T) {
	tests := []struct {
		color, storage string
		want           string
	}{
		{"black", "256GB", "p1_black_256GB"},
		{"", "", "p1_def_def"},
		{"  ", "", "p1_def_def"},
		{"black", "", "p1_black_def"},
		{"", "128GB", "p1_def_128GB"},
	}
	for _, tt := range tests {
		if got := VariantKey("p1", tt.color, tt.storage); got != tt.want {
			t.Fatalf("VariantKey(p1, %q, %q) = %q, want %q", tt.color, tt.storage, got, tt.want)
		}
	}
}

func TestAddItemMergesSameVariant(t *testing.T) {
	c := newTestCart()
	c = AddItem(c, iphoneLine(1, "black", "256GB"), testNow)
	c = AddItem(c, iphoneLine(2, "black", "256GB"), testNow)

	if len(c.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", c.Items[0].Quantity)
	}
	if c.ItemCount != 3 {
		t.Fatalf("expected itemCount 3, got %d", c.ItemCount)
	}
	assertDerivedTotals(t, c)
}

func TestAddItemDistinctVariantsStaySeparate(t *testing.T) {
	c := newTestCart()
	c = AddItem(c, iphoneLine(1, "black", "256GB"), testNow)
	c = AddItem(c, iphoneLine(1, "blue", "256GB"), testNow)
	c = AddItem(c, iphoneLine(1, "black", "512GB"), testNow)

	if len(c.Items) != 3 {
		t.Fatalf("expected 3 independent lines, got %d", len(c.Items))
	}
	assertDerivedTotals(t, c)
}

func TestAddItemNoOptionsMergeOnSentinel(t *testing.T) {
	c := newTestCart()
	c = AddItem(c, iphoneLine(1, "", ""), testNow)
	c = AddItem(c, iphoneLine(1, "", ""), testNow)

	if len(c.Items) != 1 {
		t.Fatalf("expected option-less additions to merge, got %d lines", len(c.Items))
	}
	if c.Items[0].ID != "p-iphone15_def_def" {
		t.Fatalf("unexpected variant key %q", c.Items[0].ID)
	}
}

func TestAddItemRepeatedCallsAccumulate(t *testing.T) {
	// Each add increments; retrying the same logical add is not idempotent.
	c := newTestCart()
	requested := []int{1, 2, 4}
	sum := 0
	for _, q := range requested {
		c = AddItem(c, iphoneLine(q, "black", "256GB"), testNow)
		sum += q
	}

	if c.ItemCount != sum {
		t.Fatalf("expected itemCount %d after repeated adds, got %d", sum, c.ItemCount)
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected one line for the repeated key, got %d", len(c.Items))
	}
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	c := AddItem(newTestCart(), iphoneLine(0, "", ""), testNow)
	if c.ItemCount != 1 {
		t.Fatalf("expected default quantity 1, got itemCount %d", c.ItemCount)
	}
}

func TestEmptyCartSingleAddScenario(t *testing.T) {
	c := AddItem(newTestCart(), iphoneLine(1, "", ""), testNow)

	if len(c.Items) != 1 || c.Items[0].ProductID != "p-iphone15" || c.Items[0].Quantity != 1 {
		t.Fatalf("unexpected items: %+v", c.Items)
	}
	if c.Total != 19990000 {
		t.Fatalf("expected total 19990000, got %v", c.Total)
	}
	if c.ItemCount != 1 {
		t.Fatalf("expected itemCount 1, got %d", c.ItemCount)
	}
}

func TestSetQuantitySets(t *testing.T) {
	c := AddItem(newTestCart(), iphoneLine(2, "black", "256GB"), testNow)
	c = SetQuantity(c, "p-iphone15_black_256GB", 5, testNow)

	if c.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity set to 5, got %d", c.Items[0].Quantity)
	}
	if c.Total != 5*19990000 {
		t.Fatalf("expected total scaled to 5 units, got %v", c.Total)
	}
	assertDerivedTotals(t, c)
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	base := AddItem(newTestCart(), iphoneLine(2, "black", "256GB"), testNow)

	viaSet := SetQuantity(base, "p-iphone15_black_256GB", 0, testNow)
	viaRemove := RemoveItem(base, "p-iphone15_black_256GB", testNow)

	for name, c := range map[string]Cart{"setQuantity(0)": viaSet, "removeItem": viaRemove} {
		if len(c.Items) != 0 {
			t.Fatalf("%s: expected no lines, got %d", name, len(c.Items))
		}
		if c.Total != 0 || c.ItemCount != 0 {
			t.Fatalf("%s: expected zero totals, got total=%v itemCount=%d", name, c.Total, c.ItemCount)
		}
	}
}

func TestSetQuantityNegativeRemoves(t *testing.T) {
	c := AddItem(newTestCart(), iphoneLine(1, "", ""), testNow)
	c = SetQuantity(c, "p-iphone15_def_def", -3, testNow)
	if len(c.Items) != 0 {
		t.Fatalf("expected negative quantity to remove the line, got %d lines", len(c.Items))
	}
}

func TestSetQuantityUnknownIDLeavesItems(t *testing.T) {
	c := AddItem(newTestCart(), iphoneLine(2, "", ""), testNow)
	c = SetQuantity(c, "missing", 9, testNow)
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("expected untouched cart, got %+v", c.Items)
	}
}

func TestClearKeepsIdentity(t *testing.T) {
	c := AddItem(newTestCart(), iphoneLine(3, "black", "256GB"), testNow)
	later := testNow.Add(time.Minute)
	c = Clear(c, later)

	if len(c.Items) != 0 || c.Total != 0 || c.ItemCount != 0 {
		t.Fatalf("expected empty cart, got items=%d total=%v itemCount=%d", len(c.Items), c.Total, c.ItemCount)
	}
	if c.ID != "cart-1" || c.OwnerID != "user-1" {
		t.Fatalf("clear must preserve identity, got id=%q ownerId=%q", c.ID, c.OwnerID)
	}
	if !c.UpdatedAt.Equal(later) {
		t.Fatalf("expected updatedAt refreshed to %v, got %v", later, c.UpdatedAt)
	}
	if !c.CreatedAt.Equal(testNow) {
		t.Fatalf("expected createdAt untouched, got %v", c.CreatedAt)
	}
}

func TestMergeFoldsGuestCartByVariantKey(t *testing.T) {
	user := AddItem(New("c-user", "user-1", testNow), iphoneLine(1, "black", "256GB"), testNow)
	guest := New("c-guest", GuestOwnerPrefix+"s1", testNow)
	guest = AddItem(guest, iphoneLine(2, "black", "256GB"), testNow)
	guest = AddItem(guest, iphoneLine(1, "blue", "128GB"), testNow)

	merged := Merge(user, guest, testNow)

	if merged.ID != "c-user" || merged.OwnerID != "user-1" {
		t.Fatalf("merge must keep the destination identity, got %q/%q", merged.ID, merged.OwnerID)
	}
	if len(merged.Items) != 2 {
		t.Fatalf("expected 2 lines after merge, got %d", len(merged.Items))
	}
	black, ok := FindItem(merged, "p-iphone15_black_256GB")
	if !ok || black.Quantity != 3 {
		t.Fatalf("expected black/256GB quantity 3, got %+v", black)
	}
	assertDerivedTotals(t, merged)
}

func TestGuestStoreLifecycle(t *testing.T) {
	store := NewGuestStore()

	c := store.Load("session-1")
	if c.OwnerID != GuestOwnerPrefix+"session-1" {
		t.Fatalf("unexpected owner %q", c.OwnerID)
	}
	if len(c.Items) != 0 {
		t.Fatalf("expected fresh cart to be empty")
	}

	c = AddItem(c, iphoneLine(1, "", ""), testNow)
	store.Save("session-1", c)

	reloaded := store.Load("session-1")
	if reloaded.ItemCount != 1 {
		t.Fatalf("expected saved cart back, got itemCount %d", reloaded.ItemCount)
	}

	store.Drop("session-1")
	if store.Load("session-1").ItemCount != 0 {
		t.Fatal("expected dropped session to start over empty")
	}
}
