package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/reelcart/storefront/internal/app/config"
	"github.com/reelcart/storefront/internal/domain/entity"
	"github.com/reelcart/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productCollectionName = "products"

type mongoProduct struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	ImageURL    string             `bson:"image_url,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (m *mongoProduct) toEntity() entity.Product {
	return entity.Product{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		UserID:      m.UserID.Hex(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.ProductRepository {
	return &productRepository{
		collection: client.Database(cfg.Database).Collection(productCollectionName),
	}
}

func (r *productRepository) Create(ctx context.Context, params repository.CreateProductParams) (string, error) {
	ownerOID, err := primitive.ObjectIDFromHex(params.UserID)
	if err != nil {
		return "", fmt.Errorf("invalid owner ID format: %w", repository.ErrNotFound)
	}

	now := time.Now().UTC()
	product := mongoProduct{
		ID:          primitive.NewObjectID(),
		Title:       params.Title,
		Description: params.Description,
		Price:       params.Price,
		ImageURL:    params.ImageURL,
		UserID:      ownerOID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = r.collection.InsertOne(ctx, product)
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}
	return product.ID.Hex(), nil
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, fmt.Errorf("invalid product ID format: %w", repository.ErrNotFound)
	}

	var product mongoProduct
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", productID, err)
	}
	p := product.toEntity()
	return &p, nil
}

func (r *productRepository) ListAll(ctx context.Context) ([]entity.Product, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	return r.find(ctx, bson.M{}, findOptions)
}

func (r *productRepository) ListByOwner(ctx context.Context, userID string) ([]entity.Product, error) {
	ownerOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID format: %w", repository.ErrNotFound)
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	return r.find(ctx, bson.M{"user_id": ownerOID}, findOptions)
}

func (r *productRepository) List(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	filter := bson.M{}
	if params.Query != "" {
		pattern := regexp.QuoteMeta(params.Query)
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	page := params.Page
	if page <= 0 {
		page = 1
	}
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "title", Value: 1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	products, err := r.find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	lastPage := (int(totalCount) + perPage - 1) / perPage

	return &repository.ListProductsResult{
		Products:    products,
		TotalCount:  totalCount,
		CurrentPage: page,
		PerPage:     perPage,
		LastPage:    lastPage,
	}, nil
}

func (r *productRepository) find(ctx context.Context, filter bson.M, findOptions *options.FindOptions) ([]entity.Product, error) {
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoProduct
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listed products: %w", err)
	}

	products := make([]entity.Product, len(docs))
	for i := range docs {
		products[i] = docs[i].toEntity()
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, params repository.UpdateProductParams) error {
	objID, err := primitive.ObjectIDFromHex(params.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", repository.ErrNotFound)
	}

	updateFields := bson.M{
		"title":       params.Title,
		"description": params.Description,
		"price":       params.Price,
		"updated_at":  time.Now().UTC(),
	}
	if params.ImageURL != "" {
		updateFields["image_url"] = params.ImageURL
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": updateFields})
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", params.ProductID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, productID string) error {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return fmt.Errorf("invalid product ID format: %w", repository.ErrNotFound)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", productID, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
