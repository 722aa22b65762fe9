package cart

import (
	"strings"
	"time"
)

// variantNone stands in for an unselected color or storage option so that two
// "no option" additions of the same product merge into one line.
const variantNone = "def"

// Item is a single cart line. Its ID is the variant key, so a product added
// twice with the same options always lands on the same line.
type Item struct {
	ID                string  `bson:"id" json:"id"`
	ProductID         string  `bson:"productId" json:"productId"`
	Name              string  `bson:"name" json:"name"`
	Brand             string  `bson:"brand,omitempty" json:"brand,omitempty"`
	Thumbnail         string  `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	UnitPrice         float64 `bson:"unitPrice" json:"unitPrice"`
	OriginalUnitPrice float64 `bson:"originalUnitPrice" json:"originalUnitPrice"`
	Quantity          int     `bson:"quantity" json:"quantity"`
	SelectedColor     string  `bson:"selectedColor,omitempty" json:"selectedColor,omitempty"`
	SelectedStorage   string  `bson:"selectedStorage,omitempty" json:"selectedStorage,omitempty"`
}

// Cart holds the line items for one owner. Total and ItemCount are derived
// from Items on every mutation and are never set independently.
type Cart struct {
	ID        string    `bson:"_id" json:"id"`
	OwnerID   string    `bson:"ownerId" json:"ownerId"`
	Items     []Item    `bson:"items" json:"items"`
	Total     float64   `bson:"total" json:"total"`
	ItemCount int       `bson:"itemCount" json:"itemCount"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// VariantKey builds the identity of a cart line from the product id and the
// selected options. Unselected options map to the "def" sentinel.
func VariantKey(productID, color, storage string) string {
	c := strings.TrimSpace(color)
	if c == "" {
		c = variantNone
	}
	s := strings.TrimSpace(storage)
	if s == "" {
		s = variantNone
	}
	return productID + "_" + c + "_" + s
}

// New returns an empty cart for the given owner.
func New(id, ownerID string, now time.Time) Cart {
	return Cart{
		ID:        id,
		OwnerID:   ownerID,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem merges the candidate line into the cart. An existing line with the
// same variant key has its quantity incremented by the candidate's quantity;
// otherwise the candidate is appended as a new line. The candidate's prices
// were captured at add time and are kept for an existing line.
func AddItem(c Cart, candidate Item, now time.Time) Cart {
	if candidate.Quantity <= 0 {
		candidate.Quantity = 1
	}
	if candidate.ID == "" {
		candidate.ID = VariantKey(candidate.ProductID, candidate.SelectedColor, candidate.SelectedStorage)
	}

	items := make([]Item, len(c.Items))
	copy(items, c.Items)

	merged := false
	for i := range items {
		if items[i].ID == candidate.ID {
			items[i].Quantity += candidate.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, candidate)
	}

	c.Items = items
	return recalculate(c, now)
}

// SetQuantity sets (not increments) the quantity of the line with the given
// id. A quantity of zero or less removes the line. Unknown ids leave the cart
// unchanged apart from the refreshed timestamp.
func SetQuantity(c Cart, itemID string, quantity int, now time.Time) Cart {
	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ID == itemID {
			if quantity <= 0 {
				continue
			}
			item.Quantity = quantity
		}
		items = append(items, item)
	}

	c.Items = items
	return recalculate(c, now)
}

// RemoveItem drops the line with the given id.
func RemoveItem(c Cart, itemID string, now time.Time) Cart {
	return SetQuantity(c, itemID, 0, now)
}

// Clear empties the cart. Identity and creation time are preserved.
func Clear(c Cart, now time.Time) Cart {
	c.Items = []Item{}
	return recalculate(c, now)
}

// Merge folds the src cart's lines into dst, summing quantities per variant
// key. Used to reconcile a guest cart into the user cart after login.
func Merge(dst, src Cart, now time.Time) Cart {
	for _, item := range src.Items {
		dst = AddItem(dst, item, now)
	}
	return dst
}

// FindItem returns the line with the given id, if present.
func FindItem(c Cart, itemID string) (Item, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

func recalculate(c Cart, now time.Time) Cart {
	total := 0.0
	count := 0
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
		count += item.Quantity
	}
	c.Total = total
	c.ItemCount = count
	c.UpdatedAt = now
	return c
}
