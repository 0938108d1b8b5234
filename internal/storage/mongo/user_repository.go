package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Surname      string    `bson:"surname"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		Name:         d.Name,
		Surname:      d.Surname,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

type userRepository struct {
	collection *driver.Collection
}

// NewUserRepository создаёт Mongo-реализацию UserRepository.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{collection: store.Database().Collection(usersCollection)}
}

var _ domain.UserRepository = (*userRepository)(nil)

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := userDocument{
		ID:           user.ID,
		Name:         user.Name,
		Surname:      user.Surname,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if driver.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrUserAlreadyExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *userRepository) Get(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}
