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

type customerDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Surname   string    `bson:"surname"`
	Company   string    `bson:"company"`
	Email     string    `bson:"email"`
	Phone     string    `bson:"phone,omitempty"`
	SellerID  string    `bson:"seller"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d customerDocument) toDomain() domain.Customer {
	return domain.Customer{
		ID:        d.ID,
		Name:      d.Name,
		Surname:   d.Surname,
		Company:   d.Company,
		Email:     d.Email,
		Phone:     d.Phone,
		SellerID:  d.SellerID,
		CreatedAt: d.CreatedAt,
	}
}

type customerRepository struct {
	collection *driver.Collection
}

// NewCustomerRepository создаёт Mongo-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{collection: store.Database().Collection(customersCollection)}
}

var _ domain.CustomerRepository = (*customerRepository)(nil)

func (r *customerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if customer.ID == "" {
		customer.ID = primitive.NewObjectID().Hex()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := customerDocument{
		ID:        customer.ID,
		Name:      customer.Name,
		Surname:   customer.Surname,
		Company:   customer.Company,
		Email:     customer.Email,
		Phone:     customer.Phone,
		SellerID:  customer.SellerID,
		CreatedAt: customer.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if driver.IsDuplicateKeyError(err) {
			return domain.Customer{}, domain.ErrCustomerAlreadyExists
		}
		return domain.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return customer, nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	return r.find(ctx, bson.D{})
}

func (r *customerRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Customer, error) {
	return r.find(ctx, bson.D{{Key: "seller", Value: sellerID}})
}

// Update перезаписывает только изменяемые поля: владелец и момент создания
// при обновлении не переназначаются.
func (r *customerRepository) Update(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: customer.Name},
		{Key: "surname", Value: customer.Surname},
		{Key: "company", Value: customer.Company},
		{Key: "email", Value: customer.Email},
		{Key: "phone", Value: customer.Phone},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc customerDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: customer.ID}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepository) findOne(ctx context.Context, filter bson.D) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc customerDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("find customer: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *customerRepository) find(ctx context.Context, filter bson.D) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Customer
	for cursor.Next(ctx) {
		var doc customerDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		out = append(out, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return out, nil
}
