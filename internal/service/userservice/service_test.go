package userservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/token"
	"gobackoffice/internal/repository/userrepo"
	"gobackoffice/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func newRealService() *userservice.UserService {
	repo := userrepo.NewUserRepository(docstore.NewMemoryStore(), 3, logger.NewNop())
	return userservice.NewService(repo, token.NewService("segredo", time.Hour), logger.NewNop())
}

// TestRegisterAndLogin_Success testa o fluxo completo: o primeiro usuário vira admin.
func TestRegisterAndLogin_Success(t *testing.T) {
	svc := newRealService()
	ctx := context.Background()

	first, err := svc.Register(ctx, domain.UserRegistration{Email: "Dono@Loja.com", Password: "senha-forte"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.Role)
	assert.Empty(t, first.PasswordHash)

	second, err := svc.Register(ctx, domain.UserRegistration{Email: "caixa@loja.com", Password: "senha-forte"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, second.Role)

	signed, err := svc.Login(ctx, "dono@loja.com", "senha-forte")
	require.NoError(t, err)

	actor, err := svc.Authenticate(signed)
	require.NoError(t, err)
	assert.Equal(t, first.ID, actor.ID)
	assert.Equal(t, "dono@loja.com", actor.Email)
	assert.True(t, actor.CanManage)

	signed, err = svc.Login(ctx, "caixa@loja.com", "senha-forte")
	require.NoError(t, err)
	actor, err = svc.Authenticate(signed)
	require.NoError(t, err)
	assert.False(t, actor.CanManage)
}

func TestRegister_Fail_DuplicateEmail(t *testing.T) {
	svc := newRealService()
	ctx := context.Background()
	_, err := svc.Register(ctx, domain.UserRegistration{Email: "a@loja.com", Password: "12345678"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.UserRegistration{Email: " A@loja.com ", Password: "12345678"})

	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestRegister_Fail_MissingFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := userservice.NewService(mockRepo, token.NewService("segredo", time.Hour), logger.NewNop())

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: " "})

	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_Fail_RepoError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := userservice.NewService(mockRepo, token.NewService("segredo", time.Hour), logger.NewNop())
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("domain.User")).Return(domain.User{}, errors.New("timeout"))

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: "a@b.com", Password: "12345678"})

	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
	mockRepo.AssertExpectations(t)
}

func TestLogin_Fail_InvalidCredentials(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := userservice.NewService(mockRepo, token.NewService("segredo", time.Hour), logger.NewNop())
	hash, err := bcrypt.GenerateFromPassword([]byte("correta123"), bcrypt.MinCost)
	require.NoError(t, err)

	mockRepo.On("FindByEmail", mock.Anything, "a@b.com").
		Return(domain.User{ID: "u1", Email: "a@b.com", PasswordHash: string(hash), Role: domain.RoleAdmin}, nil)
	mockRepo.On("FindByEmail", mock.Anything, "ninguem@b.com").
		Return(domain.User{}, apperror.NewNotFoundError("usuário"))

	var unauthorized *apperror.UnauthorizedError
	_, err = svc.Login(context.Background(), "a@b.com", "errada")
	assert.ErrorAs(t, err, &unauthorized)

	_, err = svc.Login(context.Background(), "ninguem@b.com", "qualquer")
	assert.ErrorAs(t, err, &unauthorized)

	_, err = svc.Login(context.Background(), "", "")
	assert.ErrorAs(t, err, &unauthorized)
	mockRepo.AssertExpectations(t)
}

func TestAuthenticate_Fail_InvalidToken(t *testing.T) {
	svc := newRealService()

	_, err := svc.Authenticate("lixo")

	var unauthorized *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
}
