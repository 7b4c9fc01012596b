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

const orderCollectionName = "orders"

type mongoOrderUser struct {
	Email  string             `bson:"email"`
	UserID primitive.ObjectID `bson:"user_id"`
}

type mongoProductSnapshot struct {
	ProductID   primitive.ObjectID `bson:"product_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	ImageURL    string             `bson:"image_url,omitempty"`
}

type mongoOrderItem struct {
	Quantity int                  `bson:"quantity"`
	Product  mongoProductSnapshot `bson:"product"`
}

type mongoOrder struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	CheckoutSessionID string             `bson:"checkout_session_id,omitempty"`
	User              mongoOrderUser     `bson:"user"`
	Items             []mongoOrderItem   `bson:"items"`
	Total             float64            `bson:"total"`
	CreatedAt         time.Time          `bson:"created_at"`
}

func (m *mongoOrder) toEntity() *entity.Order {
	items := make([]entity.OrderItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = entity.OrderItem{
			Quantity: item.Quantity,
			Product: entity.ProductSnapshot{
				ProductID:   item.Product.ProductID.Hex(),
				Title:       item.Product.Title,
				Description: item.Product.Description,
				Price:       item.Product.Price,
				ImageURL:    item.Product.ImageURL,
			},
		}
	}
	return &entity.Order{
		ID:                m.ID.Hex(),
		CheckoutSessionID: m.CheckoutSessionID,
		User: entity.OrderUser{
			Email:  m.User.Email,
			UserID: m.User.UserID.Hex(),
		},
		Items:     items,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
	}
}

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(client *mongo.Client, cfg config.MongoDBConfig, log logger.Logger) repository.OrderRepository {
	collection := client.Database(cfg.Database).Collection(orderCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Unique sparse index is the idempotency guard for order placement.
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "checkout_session_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		log.Warnf("Failed to create checkout session index for orders collection: %v", err)
	}

	return &orderRepository{collection: collection}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) (string, error) {
	userOID, err := primitive.ObjectIDFromHex(order.User.UserID)
	if err != nil {
		return "", fmt.Errorf("invalid user ID format: %w", repository.ErrNotFound)
	}

	items := make([]mongoOrderItem, len(order.Items))
	for i, item := range order.Items {
		productOID, err := primitive.ObjectIDFromHex(item.Product.ProductID)
		if err != nil {
			return "", fmt.Errorf("invalid product ID format in order item: %w", err)
		}
		items[i] = mongoOrderItem{
			Quantity: item.Quantity,
			Product: mongoProductSnapshot{
				ProductID:   productOID,
				Title:       item.Product.Title,
				Description: item.Product.Description,
				Price:       item.Product.Price,
				ImageURL:    item.Product.ImageURL,
			},
		}
	}

	doc := mongoOrder{
		ID:                primitive.NewObjectID(),
		CheckoutSessionID: order.CheckoutSessionID,
		User:              mongoOrderUser{Email: order.User.Email, UserID: userOID},
		Items:             items,
		Total:             order.Total,
		CreatedAt:         order.CreatedAt,
	}

	_, err = r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	objID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order ID format: %w", repository.ErrNotFound)
	}

	var order mongoOrder
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", orderID, err)
	}
	return order.toEntity(), nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", repository.ErrNotFound)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user.user_id": userOID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var docs []mongoOrder
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listed orders: %w", err)
	}

	orders := make([]entity.Order, len(docs))
	for i := range docs {
		orders[i] = *docs[i].toEntity()
	}
	return orders, nil
}
