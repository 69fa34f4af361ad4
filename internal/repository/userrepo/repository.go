package userrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/repository/collection"
)

// UserRepository implementa a persistência de usuários sobre o docstore.
type UserRepository struct {
	users  *collection.Collection[domain.User]
	logger logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository.
func NewUserRepository(store docstore.Store, maxRetries int, log logger.Logger) *UserRepository {
	return &UserRepository{
		users:  collection.New[domain.User](store, docstore.CollectionUsers, maxRetries, log),
		logger: log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Save insere um novo usuário. O e-mail é único; o primeiro usuário cadastrado
// recebe o papel admin para que a loja tenha quem gerencie o estoque.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	user.ID = uuid.NewString()
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	var saved domain.User
	err := r.users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, existing := range users {
			if existing.Email == user.Email {
				return nil, apperror.NewConflictError(fmt.Sprintf("O email '%s' já está em uso.", user.Email))
			}
		}
		saved = user
		if len(users) == 0 {
			saved.Role = domain.RoleAdmin
		}
		return append(users, saved), nil
	})
	if err != nil {
		return domain.User{}, err
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": saved.ID, "role": saved.Role})
	return saved, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	users, err := r.users.All(ctx)
	if err != nil {
		return domain.User{}, err
	}

	email = normalizeEmail(email)
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}

	r.logger.Info("Usuário não encontrado por email.", map[string]interface{}{"email": email})
	return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
}
