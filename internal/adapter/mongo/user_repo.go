package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reelcart/storefront/internal/app/config"
	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/platform/logger"
	"github.com/reelcart/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

type mongoCartItem struct {
	ProductID primitive.ObjectID `bson:"product_id"`
	Quantity  int                `bson:"quantity"`
}

type mongoCart struct {
	Items []mongoCartItem `bson:"items"`
}

type mongoUser struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Email               string             `bson:"email"`
	Password            string             `bson:"password"`
	Role                string             `bson:"role"`
	ResetToken          string             `bson:"reset_token,omitempty"`
	ResetTokenExpiresAt *time.Time         `bson:"reset_token_expires_at,omitempty"`
	Cart                mongoCart          `bson:"cart"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func (m *mongoUser) toEntity() *entity.User {
	cart := entity.NewCart()
	for _, item := range m.Cart.Items {
		cart.Items = append(cart.Items, entity.CartItem{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
		})
	}
	return &entity.User{
		ID:                  m.ID.Hex(),
		Email:               m.Email,
		PasswordHash:        m.Password,
		Role:                entity.Role(m.Role),
		ResetToken:          m.ResetToken,
		ResetTokenExpiresAt: m.ResetTokenExpiresAt,
		Cart:                cart,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

type userRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewUserRepository(client *mongo.Client, cfg config.MongoDBConfig, log logger.Logger) repository.UserRepository {
	collection := client.Database(cfg.Database).Collection(userCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Idempotent; a duplicate attempt only logs a warning.
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Warnf("Failed to create unique email index for users collection: %v", err)
	}

	return &userRepository{collection: collection, log: log}
}

func (r *userRepository) Create(ctx context.Context, params repository.CreateUserParams) (string, error) {
	now := time.Now().UTC()
	user := mongoUser{
		ID:        primitive.NewObjectID(),
		Email:     params.Email,
		Password:  params.PasswordHash,
		Role:      string(params.Role),
		Cart:      mongoCart{Items: []mongoCartItem{}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return user.ID.Hex(), nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", repository.ErrNotFound)
	}

	var user mongoUser
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", userID, err)
	}
	return user.toEntity(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user mongoUser
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user.toEntity(), nil
}

func (r *userRepository) SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", repository.ErrNotFound)
	}

	update := bson.M{
		"$set": bson.M{
			"reset_token":            token,
			"reset_token_expires_at": expiresAt.UTC(),
			"updated_at":             time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to set reset token for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}

	filter := bson.M{
		"reset_token":            token,
		"reset_token_expires_at": bson.M{"$gt": now.UTC()},
	}
	var user mongoUser
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}
	return user.toEntity(), nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", repository.ErrNotFound)
	}

	update := bson.M{
		"$set": bson.M{
			"password":   passwordHash,
			"updated_at": time.Now().UTC(),
		},
		// The reset token is single-use: clearing it in the same update
		// closes the window for a replay.
		"$unset": bson.M{
			"reset_token":            "",
			"reset_token_expires_at": "",
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update password for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddCartItem increments the matching cart line, or pushes a new line when
// the product is not in the cart yet. Both branches are single atomic
// updates keyed on cart state, so concurrent adds cannot lose quantity.
func (r *userRepository) AddCartItem(ctx context.Context, userID, productID string, quantity int) error {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", repository.ErrNotFound)
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", repository.ErrNotFound)
	}
	if quantity <= 0 {
		return errors.New("cart item quantity must be positive")
	}

	now := time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userOID, "cart.items.product_id": productOID},
		bson.M{
			"$inc": bson.M{"cart.items.$.quantity": quantity},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment cart item for user %s: %w", userID, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	result, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": userOID, "cart.items.product_id": bson.M{"$ne": productOID}},
		bson.M{
			"$push": bson.M{"cart.items": mongoCartItem{ProductID: productOID, Quantity: quantity}},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to push cart item for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		// The user vanished, or a concurrent add won the race for the
		// same product; retry resolves the latter.
		return r.retryIncrement(ctx, userOID, productOID, quantity, now)
	}
	return nil
}

func (r *userRepository) retryIncrement(ctx context.Context, userOID, productOID primitive.ObjectID, quantity int, now time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userOID, "cart.items.product_id": productOID},
		bson.M{
			"$inc": bson.M{"cart.items.$.quantity": quantity},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment cart item on retry: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) RemoveCartItem(ctx context.Context, userID, productID string) error {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", repository.ErrNotFound)
	}
	productOID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		// An unknown product cannot be in the cart; removing it is a no-op.
		return nil
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": userOID},
		bson.M{
			"$pull": bson.M{"cart.items": bson.M{"product_id": productOID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item for user %s: %w", userID, err)
	}
	return nil
}

func (r *userRepository) ClearCart(ctx context.Context, userID string) error {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", repository.ErrNotFound)
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": userOID},
		bson.M{
			"$set": bson.M{
				"cart.items": []mongoCartItem{},
				"updated_at": time.Now().UTC(),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
