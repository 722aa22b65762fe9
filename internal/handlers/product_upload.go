package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"phonestore/internal/models"
)

/*
POST /admin/api/products/:id/image
- multipart upload; "slot" field selects thumbnail (default) or gallery.
  A replaced thumbnail file is deleted from disk.
*/
func UploadProductImage(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		if !strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "multipart/form-data required"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
			return
		}

		slot := strings.TrimSpace(strings.ToLower(c.PostForm("slot")))
		if slot == "" {
			slot = "thumbnail"
		}
		if slot != "thumbnail" && slot != "gallery" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slot must be thumbnail or gallery"})
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

		imagePath, err := saveImage(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{}
		if slot == "thumbnail" {
			update["thumbnail"] = imagePath
		} else {
			update["images"] = append(existing.Images, imagePath)
		}

		var raw bson.M
		err = db.Collection("products").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": update},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&raw)
		if err != nil {
			log.Println("UploadProductImage update error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if slot == "thumbnail" && strings.TrimSpace(existing.Thumbnail) != "" {
			if err := safeDeleteUpload(existing.Thumbnail); err != nil {
				log.Println("UploadProductImage: old thumbnail cleanup failed:", err)
			}
		}

		updated, err := normalizeProductDocument(raw)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func saveImage(file *multipart.FileHeader) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return "", fmt.Errorf("image file extension is required")
	}
	allowedExtensions := map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".webp": {},
	}
	if _, ok := allowedExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported image type: %s", extension)
	}
	const maxImageSize = 5 << 20
	if file.Size > maxImageSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}

	filename := primitive.NewObjectID().Hex() + extension

	dir := filepath.Join(publicRootDir, "uploads", "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] saveImage: failed to create directory %s: %v", dir, err)
		return "", err
	}

	fullPath := filepath.Join(dir, filename)

	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] saveImage: failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		log.Printf("[UPLOAD] saveImage: failed to open upload %s: %v", file.Filename, err)
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		log.Printf("[UPLOAD] saveImage: failed to save file %s: %v", fullPath, err)
		return "", err
	}

	return filepath.ToSlash(filepath.Join("uploads", "products", filename)), nil
}
