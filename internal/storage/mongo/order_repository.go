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

type lineItemDocument struct {
	ProductID string `bson:"product"`
	Quantity  int32  `bson:"quantity"`
}

type orderDocument struct {
	ID         string             `bson:"_id"`
	CustomerID string             `bson:"customer"`
	SellerID   string             `bson:"seller"`
	Status     string             `bson:"status"`
	Total      float64            `bson:"total"`
	Items      []lineItemDocument `bson:"items"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d orderDocument) toDomain() domain.Order {
	items := make([]domain.LineItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return domain.Order{
		ID:         d.ID,
		CustomerID: d.CustomerID,
		SellerID:   d.SellerID,
		Status:     domain.OrderStatus(d.Status),
		Total:      d.Total,
		Items:      items,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func toOrderDocument(o domain.Order) orderDocument {
	items := make([]lineItemDocument, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, lineItemDocument{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return orderDocument{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		SellerID:   o.SellerID,
		Status:     string(o.Status),
		Total:      o.Total,
		Items:      items,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

type orderRepository struct {
	collection *driver.Collection
}

// NewOrderRepository создаёт Mongo-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{collection: store.Database().Collection(ordersCollection)}
}

var _ domain.OrderRepository = (*orderRepository)(nil)

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	if order.ID == "" {
		order.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, toOrderDocument(order)); err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc orderDocument
	if err := r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, bson.D{})
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	return r.find(ctx, bson.D{{Key: "seller", Value: sellerID}})
}

func (r *orderRepository) ListBySellerAndStatus(ctx context.Context, sellerID string, status domain.OrderStatus) ([]domain.Order, error) {
	return r.find(ctx, bson.D{
		{Key: "seller", Value: sellerID},
		{Key: "status", Value: string(status)},
	})
}

// Update перезаписывает изменяемые поля заказа; владелец и момент создания
// не переназначаются.
func (r *orderRepository) Update(ctx context.Context, order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	items := make([]lineItemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemDocument{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "customer", Value: order.CustomerID},
		{Key: "status", Value: string(order.Status)},
		{Key: "total", Value: order.Total},
		{Key: "items", Value: items},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: order.ID}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) find(ctx context.Context, filter bson.D) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Order
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}
