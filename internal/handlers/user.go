package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"phonestore/internal/models"
)

type addressRequest struct {
	Title     string `json:"title" binding:"required"`
	Detail    string `json:"detail" binding:"required"`
	Note      string `json:"note"`
	IsDefault bool   `json:"isDefault"`
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get("userId")
		if !ok {
			log.Println("[AUTH] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[AUTH] [ERROR] get me failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":        user.ID.Hex(),
			"email":     user.Email,
			"name":      user.Name,
			"phone":     user.Phone,
			"addresses": user.Addresses,
			"createdAt": user.CreatedAt,
			"updatedAt": user.UpdatedAt,
		})
	}
}

func GetUserAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[ADDRESS] [ERROR] get addresses failed:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func CreateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[ADDRESS] [ERROR] invalid address body:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		if req.IsDefault {
			for i := range user.Addresses {
				user.Addresses[i].IsDefault = false
			}
		}

		address := models.Address{
			ID:        uuid.NewString(),
			Title:     strings.TrimSpace(req.Title),
			Detail:    strings.TrimSpace(req.Detail),
			Note:      strings.TrimSpace(req.Note),
			IsDefault: req.IsDefault,
		}

		user.Addresses = append(user.Addresses, address)
		user.UpdatedAt = time.Now()

		_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				"addresses": user.Addresses,
				"updatedAt": user.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADDRESS] [ERROR] insert address failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		log.Println("[ADDRESS] [INFO] address created:", address.ID)
		c.JSON(http.StatusCreated, gin.H{"address": address})
	}
}

func UpdateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Println("[ADDRESS] [ERROR] invalid address body:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		addressID := strings.TrimSpace(c.Param("id"))
		if addressID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		found := false
		for i := range user.Addresses {
			if user.Addresses[i].ID != addressID {
				if req.IsDefault {
					user.Addresses[i].IsDefault = false
				}
				continue
			}
			user.Addresses[i].Title = strings.TrimSpace(req.Title)
			user.Addresses[i].Detail = strings.TrimSpace(req.Detail)
			user.Addresses[i].Note = strings.TrimSpace(req.Note)
			user.Addresses[i].IsDefault = req.IsDefault
			found = true
		}

		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			return
		}

		user.UpdatedAt = time.Now()

		_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				"addresses": user.Addresses,
				"updatedAt": user.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADDRESS] [ERROR] update address failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func DeleteUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDValue, ok := c.Get("userId")
		if !ok {
			log.Println("[ADDRESS] [ERROR] userId missing in context")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID := userIDValue.(primitive.ObjectID)

		addressID := strings.TrimSpace(c.Param("id"))
		if addressID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			log.Println("[ADDRESS] [ERROR] user not found:", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		kept := make([]models.Address, 0, len(user.Addresses))
		removed := false
		for _, address := range user.Addresses {
			if address.ID == addressID {
				removed = true
				continue
			}
			kept = append(kept, address)
		}

		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
			return
		}

		user.UpdatedAt = time.Now()

		_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				"addresses": kept,
				"updatedAt": user.UpdatedAt,
			},
		})
		if err != nil {
			log.Println("[ADDRESS] [ERROR] delete address failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"addresses": kept})
	}
}
