package catalog

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// Количество результатов текстового поиска, как в исходной системе.
const searchLimit = 10

// ProductInput — данные для создания или обновления товара.
type ProductInput struct {
	Name      string
	Price     float64
	Available int32
}

// Service — CRUD каталога товаров. Товары не принадлежат продавцу,
// проверок владения здесь нет.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService конструирует сервис каталога.
func NewService(products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{products: products, logger: logger}
}

// Create добавляет товар в каталог.
func (s *Service) Create(ctx context.Context, input ProductInput) (domain.Product, error) {
	product := domain.Product{
		Name:      input.Name,
		Price:     input.Price,
		Available: input.Available,
	}
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		s.logger.WithError(err).Error("failed to persist product")
		return domain.Product{}, err
	}
	s.logger.WithField("product_id", created.ID).Info("product created")
	return created, nil
}

// Get возвращает товар по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.products.Get(ctx, id)
}

// List возвращает весь каталог.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// Search возвращает товары по текстовому запросу, не более searchLimit штук.
func (s *Service) Search(ctx context.Context, text string) ([]domain.Product, error) {
	return s.products.Search(ctx, text, searchLimit)
}

// Update перезаписывает поля товара после проверки существования.
func (s *Service) Update(ctx context.Context, id string, input ProductInput) (domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	product.Name = input.Name
	product.Price = input.Price
	product.Available = input.Available
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	return s.products.Update(ctx, product)
}

// Delete удаляет товар после проверки существования.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.products.Get(ctx, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}
