package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses, in delivery order. Cancelled sits outside the chain.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipping  = "shipping"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is a frozen snapshot of a cart line at checkout time. Prices are
// the unit prices recomputed server-side when the order was placed.
type OrderItem struct {
	ItemID            string             `bson:"itemId" json:"itemId"`
	ProductID         primitive.ObjectID `bson:"productId" json:"productId"`
	Name              string             `bson:"name" json:"name"`
	Brand             string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Thumbnail         string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	UnitPrice         float64            `bson:"unitPrice" json:"unitPrice"`
	OriginalUnitPrice float64            `bson:"originalUnitPrice" json:"originalUnitPrice"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	SelectedColor     string             `bson:"selectedColor,omitempty" json:"selectedColor,omitempty"`
	SelectedStorage   string             `bson:"selectedStorage,omitempty" json:"selectedStorage,omitempty"`
}

// OrderAddress captures the shipping address as entered at checkout.
type OrderAddress struct {
	Title  string `bson:"title" json:"title"`
	Detail string `bson:"detail" json:"detail"`
	Note   string `bson:"note,omitempty" json:"note,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID       *primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Items         []OrderItem         `bson:"items" json:"items"`
	Total         float64             `bson:"total" json:"total"`
	ItemCount     int                 `bson:"itemCount" json:"itemCount"`
	Address       OrderAddress        `bson:"address" json:"address"`
	PaymentMethod string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentRef    string              `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
	Status        string              `bson:"status" json:"status"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}
