package handlers

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"phonestore/internal/models"
)

/* =======================
   REQUEST MODELS
======================= */

type ProductCreateRequest struct {
	Name        string            `json:"name" binding:"required"`
	Brand       string            `json:"brand"`
	Price       float64           `json:"price" binding:"required"`
	SaleEnabled bool              `json:"saleEnabled"`
	SalePrice   float64           `json:"salePrice"`
	CategoryIDs []string          `json:"category_id" binding:"required"`
	Description string            `json:"description"`
	Thumbnail   string            `json:"thumbnail"`
	Images      []string          `json:"images"`
	Colors      []string          `json:"colors"`
	Storage     []string          `json:"storage"`
	Specs       map[string]string `json:"specs"`
	Stock       *int              `json:"stock" binding:"required"`
	IsActive    *bool             `json:"isActive"`
	IsFeatured  *bool             `json:"isFeatured"`
}

type ProductUpdateRequest struct {
	Name        *string            `json:"name"`
	Brand       *string            `json:"brand"`
	Price       *float64           `json:"price"`
	SaleEnabled *bool              `json:"saleEnabled"`
	SalePrice   *float64           `json:"salePrice"`
	CategoryIDs *[]string          `json:"category_id"`
	Description *string            `json:"description"`
	Thumbnail   *string            `json:"thumbnail"`
	Images      *[]string          `json:"images"`
	Colors      *[]string          `json:"colors"`
	Storage     *[]string          `json:"storage"`
	Specs       *map[string]string `json:"specs"`
	Stock       *int               `json:"stock"`
	Rating      *float64           `json:"rating"`
	ReviewCount *int               `json:"reviewCount"`
	IsActive    *bool              `json:"isActive"`
	IsFeatured  *bool              `json:"isFeatured"`
}

/* =======================
   HELPERS
======================= */

func normalizeCategories(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)

	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func resolveCategoryNamesByIDs(ctx context.Context, db *mongo.Database, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("category_id required")
	}

	seen := map[primitive.ObjectID]struct{}{}
	ordered := make([]primitive.ObjectID, 0, len(ids))

	for _, raw := range ids {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		objectID, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %s", value)
		}
		if _, ok := seen[objectID]; ok {
			continue
		}
		seen[objectID] = struct{}{}
		ordered = append(ordered, objectID)
	}

	if len(ordered) == 0 {
		return nil, fmt.Errorf("category_id required")
	}

	cursor, err := db.Collection("categories").Find(ctx, bson.M{"_id": bson.M{"$in": ordered}})
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}

	nameByID := make(map[primitive.ObjectID]string, len(categories))
	for _, category := range categories {
		nameByID[category.ID] = category.Name
	}

	names := make([]string, 0, len(ordered))
	for _, objectID := range ordered {
		name, ok := nameByID[objectID]
		if !ok {
			return nil, fmt.Errorf("category not found: %s", objectID.Hex())
		}
		names = append(names, name)
	}

	return names, nil
}

func normalizeOptionList(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		value := strings.TrimSpace(v)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination params"})
			return
		}

		filter := bson.M{
			"isDeleted": bson.M{"$ne": true},
		}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = bson.M{"$in": []string{category}}
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"brand": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		if isActive := strings.TrimSpace(c.Query("isActive")); isActive != "" {
			filter["isActive"] = strings.EqualFold(isActive, "true")
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		totalPages := int64(math.Ceil(float64(total) / float64(limit)))

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		if req.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
			return
		}

		if err := validateSaleFields(req.Price, req.SaleEnabled, req.SalePrice, req.SalePrice > 0); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if *req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be zero or greater"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		categoryNames, err := resolveCategoryNamesByIDs(ctx, db, req.CategoryIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		isFeatured := false
		if req.IsFeatured != nil {
			isFeatured = *req.IsFeatured
		}

		now := time.Now()
		product := models.Product{
			Name:        name,
			Brand:       strings.TrimSpace(req.Brand),
			Price:       req.Price,
			SaleEnabled: req.SaleEnabled,
			SalePrice:   req.SalePrice,
			IsOnSale:    isProductOnSale(req.Price, req.SaleEnabled, req.SalePrice),
			Category:    models.StringList(normalizeCategories(categoryNames)),
			Description: strings.TrimSpace(req.Description),
			Thumbnail:   strings.TrimSpace(req.Thumbnail),
			Images:      req.Images,
			Colors:      normalizeOptionList(req.Colors),
			Storage:     normalizeOptionList(req.Storage),
			Specs:       req.Specs,
			Stock:       *req.Stock,
			InStock:     *req.Stock > 0,
			IsActive:    isActive,
			IsFeatured:  isFeatured,
			IsDeleted:   false,
			CreatedAt:   now,
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("CreateProduct insert error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		product.ID = res.InsertedID.(primitive.ObjectID)
		log.Println("CreateProduct insert success:", res.InsertedID)
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       id,
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		updateSet := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
				return
			}
			updateSet["name"] = name
		}

		if req.Brand != nil {
			updateSet["brand"] = strings.TrimSpace(*req.Brand)
		}

		saleResult, err := resolveSaleUpdate(existing.Price, existing.SaleEnabled, existing.SalePrice, saleUpdateInput{
			Price:       req.Price,
			SaleEnabled: req.SaleEnabled,
			SalePrice:   req.SalePrice,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
			updateSet["price"] = saleResult.Price
		}
		if saleResult.SetSaleEnabled {
			updateSet["saleEnabled"] = saleResult.SaleEnabled
		}
		if saleResult.SetSalePrice {
			updateSet["salePrice"] = saleResult.SalePrice
		}

		if req.CategoryIDs != nil {
			categoryNames, err := resolveCategoryNamesByIDs(ctx, db, *req.CategoryIDs)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updateSet["category"] = normalizeCategories(categoryNames)
		}

		if req.Description != nil {
			updateSet["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Thumbnail != nil {
			updateSet["thumbnail"] = strings.TrimSpace(*req.Thumbnail)
		}
		if req.Images != nil {
			updateSet["images"] = *req.Images
		}
		if req.Colors != nil {
			updateSet["colors"] = normalizeOptionList(*req.Colors)
		}
		if req.Storage != nil {
			updateSet["storage"] = normalizeOptionList(*req.Storage)
		}
		if req.Specs != nil {
			updateSet["specs"] = *req.Specs
		}

		if req.Stock != nil {
			if *req.Stock < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be zero or greater"})
				return
			}
			updateSet["stock"] = *req.Stock
		}

		if req.Rating != nil {
			if *req.Rating < 0 || *req.Rating > 5 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 0 and 5"})
				return
			}
			updateSet["rating"] = *req.Rating
		}
		if req.ReviewCount != nil {
			if *req.ReviewCount < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "reviewCount must be zero or greater"})
				return
			}
			updateSet["reviewCount"] = *req.ReviewCount
		}

		if req.IsActive != nil {
			updateSet["isActive"] = *req.IsActive
		}
		if req.IsFeatured != nil {
			updateSet["isFeatured"] = *req.IsFeatured
		}

		if len(updateSet) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		var raw bson.M
		err = db.Collection("products").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": updateSet},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&raw)
		if err != nil {
			log.Println("UpdateProduct update error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		updated, err := normalizeProductDocument(raw)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE (SOFT)
======================= */

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		result, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{
				"isDeleted": true,
				"isActive":  false,
				"deletedAt": now,
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
