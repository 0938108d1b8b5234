package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultConnTimeout = 5 * time.Second
	opTimeout          = 5 * time.Second
)

// Имена коллекций.
const (
	usersCollection     = "users"
	productsCollection  = "products"
	customersCollection = "customers"
	ordersCollection    = "orders"
)

// Store оборачивает подключение к MongoDB.
type Store struct {
	client *driver.Client
	db     *driver.Database
}

// Open открывает подключение к MongoDB и проверяет доступность сервера.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()

	client, err := driver.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("open mongo connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Database возвращает raw-хэндл базы, когда нужен низкоуровневый доступ.
func (s *Store) Database() *driver.Database {
	return s.db
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("mongo store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.client.Ping(pingCtx, readpref.Primary())
}

// EnsureIndexes создаёт индексы, на которые полагаются репозитории:
// уникальные email у пользователей и клиентов, текстовый индекс каталога
// для полнотекстового поиска, индекс заказов по продавцу.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	unique := options.Index().SetUnique(true)
	specs := map[string][]driver.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		customersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "seller", Value: 1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "name", Value: "text"}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "seller", Value: 1}, {Key: "status", Value: 1}}},
		},
	}

	for collection, models := range specs {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// Close закрывает подключение к БД.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
