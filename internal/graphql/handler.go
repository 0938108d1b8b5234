package graphql

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/auth"
)

// request — тело POST /graphql.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler принимает GraphQL-запросы по HTTP POST и исполняет их против схемы.
type Handler struct {
	schema graphql.Schema
	logger *log.Entry
}

// NewHandler создаёт HTTP-обработчик GraphQL.
func NewHandler(schema graphql.Schema, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.NewEntry(log.New())
	}
	return &Handler{schema: schema, logger: logger}
}

var _ http.Handler = (*Handler)(nil)

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})
	if len(result.Errors) > 0 {
		h.logger.WithField("operation", req.OperationName).
			Debugf("graphql request finished with errors: %v", result.Errors)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Errorf("failed to encode graphql response: %v", err)
	}
}

// AuthMiddleware извлекает bearer-токен из заголовка Authorization и кладёт
// identity вызывающего в контекст запроса. Отсутствующий или невалидный токен
// не прерывает запрос: резолверы, которым нужен вызывающий, вернут
// ErrNotAuthenticated сами.
func AuthMiddleware(tokens *auth.TokenManager, logger *log.Entry) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.NewEntry(log.New())
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			id, err := tokens.Parse(raw)
			if err != nil {
				logger.Debugf("rejected authorization token: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
