package accounts

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/auth"
	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// RegisterInput — данные регистрации продавца.
type RegisterInput struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// Service отвечает за регистрацию и аутентификацию продавцов.
type Service struct {
	users  domain.UserRepository
	tokens *auth.TokenManager
	logger *log.Entry
}

// NewService конструирует сервис с зависимостями.
func NewService(users domain.UserRepository, tokens *auth.TokenManager, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "accounts")
	}
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register создаёт пользователя. Повторная регистрация email отклоняется,
// хэш существующего пользователя никогда не перезаписывается.
func (s *Service) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if input.Password == "" {
		return domain.User{}, domain.ErrAuthenticationFailed
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return domain.User{}, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		return domain.User{}, err
	}

	user := domain.User{
		Name:         input.Name,
		Surname:      input.Surname,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if errs := user.ValidateInvariants(); len(errs) > 0 {
		return domain.User{}, errors.Join(errs...)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.logger.WithError(err).Error("failed to persist user")
		return domain.User{}, err
	}

	s.logger.WithField("user_id", created.ID).Info("user registered")
	return created, nil
}

// Authenticate проверяет учётные данные и выпускает access-токен.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrAuthenticationFailed
		}
		return "", err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", domain.ErrAuthenticationFailed
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.WithError(err).Error("failed to issue token")
		return "", err
	}
	return token, nil
}

// CurrentUser возвращает запись пользователя по идентичности из токена.
func (s *Service) CurrentUser(ctx context.Context, callerID string) (domain.User, error) {
	return s.users.Get(ctx, callerID)
}
