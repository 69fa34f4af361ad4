package domain

import "time"

// User representa a entidade do usuário no sistema.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public devolve uma cópia sem o hash da senha, para respostas da API.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// CanManageInventory indica se o papel pode mutar estoque, recebimentos e devoluções.
func (r UserRole) CanManageInventory() bool {
	return r == RoleAdmin || r == RoleManager
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Actor é a identidade que executa uma operação. O núcleo apenas carimba
// esses dados nos registros; a autorização acontece na camada HTTP.
type Actor struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CanManage bool   `json:"can_manage"`
}
