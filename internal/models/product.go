package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	SaleEnabled bool               `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice   float64            `bson:"salePrice" json:"salePrice"`
	IsOnSale    bool               `bson:"-" json:"isOnSale"`
	Category    StringList         `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Thumbnail   string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Colors      []string           `bson:"colors,omitempty" json:"colors,omitempty"`
	Storage     []string           `bson:"storage,omitempty" json:"storage,omitempty"`
	Specs       map[string]string  `bson:"specs,omitempty" json:"specs,omitempty"`
	Stock       int                `bson:"stock" json:"stock"`
	InStock     bool               `bson:"-" json:"inStock"`
	Rating      float64            `bson:"rating" json:"rating"`
	ReviewCount int                `bson:"reviewCount" json:"reviewCount"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
