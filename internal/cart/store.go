package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists authenticated carts in the carts collection, one document
// per owner. Writes replace the whole document: concurrent mutations of the
// same cart are last-write-wins, there is no transactional guard.
type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Load returns the owner's cart, lazily creating an empty document on first
// read.
func (s *Store) Load(ctx context.Context, ownerID string) (Cart, error) {
	var c Cart
	err := s.db.Collection("carts").FindOne(ctx, bson.M{"ownerId": ownerID}).Decode(&c)
	if err == nil {
		if c.Items == nil {
			c.Items = []Item{}
		}
		return c, nil
	}
	if err != mongo.ErrNoDocuments {
		return Cart{}, err
	}

	c = New(uuid.NewString(), ownerID, time.Now())
	if _, err := s.db.Collection("carts").InsertOne(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Save writes the cart document back, creating it if the lazy insert raced a
// restart.
func (s *Store) Save(ctx context.Context, c Cart) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection("carts").ReplaceOne(ctx, bson.M{"ownerId": c.OwnerID}, c, opts)
	return err
}
