package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

type reportsRepository struct {
	orders *driver.Collection
}

// NewReports создаёт отчётные агрегации поверх коллекции заказов.
// Соединение ($lookup) выполняется на стороне БД; заказы, чей клиент или
// продавец уже удалён, выпадают из отчёта на шаге $unwind.
func NewReports(store *Store) domain.ReportsRepository {
	return &reportsRepository{orders: store.Database().Collection(ordersCollection)}
}

var _ domain.ReportsRepository = (*reportsRepository)(nil)

func (r *reportsRepository) TopCustomers(ctx context.Context, limit int) ([]domain.CustomerSales, error) {
	pipeline := salesPipeline("$customer", customersCollection, "customer", limit)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate top customers: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.CustomerSales
	for cursor.Next(ctx) {
		var row struct {
			Total    float64          `bson:"total"`
			Customer customerDocument `bson:"customer"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode top customers row: %w", err)
		}
		out = append(out, domain.CustomerSales{Customer: row.Customer.toDomain(), Total: row.Total})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate top customers: %w", err)
	}
	return out, nil
}

func (r *reportsRepository) TopSellers(ctx context.Context, limit int) ([]domain.SellerSales, error) {
	pipeline := salesPipeline("$seller", usersCollection, "seller", limit)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate top sellers: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.SellerSales
	for cursor.Next(ctx) {
		var row struct {
			Total  float64      `bson:"total"`
			Seller userDocument `bson:"seller"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode top sellers row: %w", err)
		}
		out = append(out, domain.SellerSales{Seller: row.Seller.toDomain(), Total: row.Total})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate top sellers: %w", err)
	}
	return out, nil
}

// salesPipeline строит общий конвейер отчётов: только завершённые заказы,
// группировка по ключу с суммой Total, подтягивание сущности из соседней
// коллекции, сортировка по убыванию суммы и ограничение размера выдачи.
func salesPipeline(groupKey, from, as string, limit int) driver.Pipeline {
	return driver.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: string(domain.OrderStatusCompleted)}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: groupKey},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$total"}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: "$" + as}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
}
