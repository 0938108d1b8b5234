package customers

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// CustomerInput — данные для создания или обновления клиента.
type CustomerInput struct {
	Name    string
	Surname string
	Company string
	Email   string
	Phone   string
}

// Service — CRUD клиентов с проверкой владения: читать, менять и удалять
// клиента может только создавший его продавец.
type Service struct {
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewService конструирует сервис клиентов.
func NewService(customers domain.CustomerRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "customers")
	}
	return &Service{customers: customers, logger: logger}
}

// Create регистрирует клиента за вызывающим продавцом. Уникальность email —
// best-effort проверка перед вставкой, без транзакции.
func (s *Service) Create(ctx context.Context, input CustomerInput, callerID string) (domain.Customer, error) {
	if _, err := s.customers.GetByEmail(ctx, input.Email); err == nil {
		return domain.Customer{}, domain.ErrCustomerAlreadyExists
	} else if !errors.Is(err, domain.ErrCustomerNotFound) {
		return domain.Customer{}, err
	}

	customer := domain.Customer{
		Name:     input.Name,
		Surname:  input.Surname,
		Company:  input.Company,
		Email:    input.Email,
		Phone:    input.Phone,
		SellerID: callerID,
	}
	if errs := customer.ValidateInvariants(); len(errs) > 0 {
		return domain.Customer{}, errors.Join(errs...)
	}

	created, err := s.customers.Create(ctx, customer)
	if err != nil {
		s.logger.WithError(err).Error("failed to persist customer")
		return domain.Customer{}, err
	}
	s.logger.WithFields(log.Fields{
		"customer_id": created.ID,
		"seller_id":   callerID,
	}).Info("customer created")
	return created, nil
}

// Get возвращает клиента; видеть его может только владеющий продавец.
func (s *Service) Get(ctx context.Context, id, callerID string) (domain.Customer, error) {
	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := domain.Authorize(customer.SellerID, callerID); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

// List возвращает всех клиентов.
func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.List(ctx)
}

// ListMine возвращает клиентов вызывающего продавца.
func (s *Service) ListMine(ctx context.Context, callerID string) ([]domain.Customer, error) {
	return s.customers.ListBySeller(ctx, callerID)
}

// Update перезаписывает контактные поля клиента после проверки владения.
// Владелец (SellerID) не переназначается.
func (s *Service) Update(ctx context.Context, id string, input CustomerInput, callerID string) (domain.Customer, error) {
	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if err := domain.Authorize(customer.SellerID, callerID); err != nil {
		return domain.Customer{}, err
	}

	customer.Name = input.Name
	customer.Surname = input.Surname
	customer.Company = input.Company
	customer.Email = input.Email
	customer.Phone = input.Phone
	if errs := customer.ValidateInvariants(); len(errs) > 0 {
		return domain.Customer{}, errors.Join(errs...)
	}

	return s.customers.Update(ctx, customer)
}

// Delete удаляет клиента после проверки владения. Заказы клиента не
// каскадируются.
func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(customer.SellerID, callerID); err != nil {
		return err
	}
	return s.customers.Delete(ctx, id)
}
