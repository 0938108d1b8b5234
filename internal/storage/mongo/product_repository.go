package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

type productDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Price     float64   `bson:"price"`
	Available int32     `bson:"available"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d productDocument) toDomain() domain.Product {
	return domain.Product{
		ID:        d.ID,
		Name:      d.Name,
		Price:     d.Price,
		Available: d.Available,
		CreatedAt: d.CreatedAt,
	}
}

func toProductDocument(p domain.Product) productDocument {
	return productDocument{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Available: p.Available,
		CreatedAt: p.CreatedAt,
	}
}

type productRepository struct {
	collection *driver.Collection
}

// NewProductRepository создаёт Mongo-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{collection: store.Database().Collection(productsCollection)}
}

var _ domain.ProductRepository = (*productRepository)(nil)

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, toProductDocument(product)); err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc productDocument
	if err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("find product: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return decodeProducts(ctx, cursor)
}

func (r *productRepository) Search(ctx context.Context, text string, limit int) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: text}}}}
	opts := options.Find().SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return decodeProducts(ctx, cursor)
}

func (r *productRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: product.ID}}, toProductDocument(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// DecrementStock выполняет условное списание одной командой: фильтр требует
// available >= qty, так что конкурентные заказы не могут увести остаток в минус.
func (r *productRepository) DecrementStock(ctx context.Context, id string, qty int32) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "available", Value: bson.D{{Key: "$gte", Value: qty}}},
	}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "available", Value: -qty}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, driver.ErrNoDocuments) {
		return domain.Product{}, fmt.Errorf("decrement stock: %w", err)
	}

	// Фильтр не совпал: либо товара нет, либо остатка не хватает.
	count, countErr := r.collection.CountDocuments(ctx, bson.D{{Key: "_id", Value: id}})
	if countErr != nil {
		return domain.Product{}, fmt.Errorf("decrement stock: %w", countErr)
	}
	if count == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return domain.Product{}, domain.ErrInsufficientStock
}

func decodeProducts(ctx context.Context, cursor *driver.Cursor) ([]domain.Product, error) {
	defer cursor.Close(ctx)

	var out []domain.Product
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}
