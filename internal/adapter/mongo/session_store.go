package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reelcart/storefront/internal/app/config"
	"github.com/reelcart/storefront/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessions"

type mongoSession struct {
	Token  string    `bson:"_id"`
	Data   []byte    `bson:"data"`
	Expiry time.Time `bson:"expiry"`
}

// SessionStore persists scs session data in a MongoDB collection so that
// sessions survive server restarts. Expired documents are reaped by a TTL
// index rather than an application-side cleanup goroutine.
type SessionStore struct {
	collection *mongo.Collection
}

func NewSessionStore(client *mongo.Client, cfg config.MongoDBConfig, log logger.Logger) *SessionStore {
	collection := client.Database(cfg.Database).Collection(sessionCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiry", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		log.Warnf("Failed to create TTL index for sessions collection: %v", err)
	}

	return &SessionStore{collection: collection}
}

// Find returns the data for a session token. The found flag is false for
// both unknown and expired tokens; a TTL reaper can lag, so expiry is
// checked here too.
func (s *SessionStore) Find(token string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var session mongoSession
	err := s.collection.FindOne(ctx, bson.M{"_id": token}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find session: %w", err)
	}
	if session.Expiry.Before(time.Now().UTC()) {
		return nil, false, nil
	}
	return session.Data, true, nil
}

// Commit upserts the session data under the token with the given expiry.
func (s *SessionStore) Commit(token string, b []byte, expiry time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": token},
		bson.M{"$set": bson.M{"data": b, "expiry": expiry.UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Delete removes the session token. Deleting an unknown token is not an
// error.
func (s *SessionStore) Delete(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": token})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
