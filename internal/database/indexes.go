package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	nameBrandIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "name", Value: 1},
			{Key: "brand", Value: 1},
		},
		Options: options.Index().SetName("name_brand_index"),
	}

	log.Println("EnsureProductIndexes: creating name_brand_index")
	_, err := indexes.CreateOne(ctx, nameBrandIndex)
	if err != nil {
		log.Println("EnsureProductIndexes: name_brand index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: name_brand_index created")
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("carts").Indexes()

	ownerIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}},
		Options: options.Index().
			SetName("ownerId_unique").
			SetUnique(true),
	}

	log.Println("EnsureCartIndexes: creating ownerId_unique index")
	_, err := indexes.CreateOne(ctx, ownerIndex)
	if err != nil {
		log.Println("EnsureCartIndexes: ownerId index error:", err)
		return err
	}
	log.Println("EnsureCartIndexes: ownerId_unique index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	ownerIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "ownerId", Value: 1}},
		Options: options.Index().SetName("ownerId_index"),
	}

	log.Println("EnsureOrderIndexes: creating ownerId_index")
	_, err := indexes.CreateOne(ctx, ownerIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: ownerId index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: ownerId_index created")
	return nil
}
