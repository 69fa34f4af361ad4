package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// AppError é a interface central para todos os erros customizados do back-office.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION_ERROR", "NOT_FOUND", "INTERNAL_ERROR")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa uma ou mais violações de regra de negócio.
// Msg resume a primeira violação; Violations traz a lista completa.
type ValidationError struct {
	Msg        string
	Violations []string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }                   // Não encapsula erro subjacente

// NewValidationError cria um novo erro de validação com uma única mensagem.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg, Violations: []string{msg}}
}

// NewViolationsError cria um erro de validação a partir de uma lista de violações.
func NewViolationsError(violations []string) AppError {
	if len(violations) == 0 {
		return NewValidationError("Requisição inválida.")
	}
	msg := violations[0]
	if len(violations) > 1 {
		msg = fmt.Sprintf("%s (+%d)", violations[0], len(violations)-1)
	}
	return &ValidationError{Msg: msg, Violations: violations}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// InvalidStateError representa uma transição não permitida (e.g., aprovar devolução já rejeitada).
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string    { return fmt.Sprintf("Estado inválido: %s", e.Msg) }
func (e *InvalidStateError) Category() string { return "INVALID_STATE" }
func (e *InvalidStateError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *InvalidStateError) Unwrap() error    { return nil }

// NewInvalidStateError cria um novo erro de estado inválido.
func NewInvalidStateError(msg string) AppError {
	return &InvalidStateError{Msg: msg}
}

// InsufficientStockError é retornado quando um débito deixaria o estoque negativo.
type InsufficientStockError struct {
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para o produto %s: disponível %s, solicitado %s",
		e.ProductID, e.Available.StringFixed(3), e.Requested.StringFixed(3))
}
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *InsufficientStockError) Unwrap() error    { return nil }

// NewInsufficientStockError cria um erro de estoque insuficiente.
func NewInsufficientStockError(productID string, available, requested decimal.Decimal) AppError {
	return &InsufficientStockError{ProductID: productID, Available: available, Requested: requested}
}

// ConflictError representa um conflito na regra de negócio (e.g., OCC, recurso duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito (usado em OCC).
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa ausência ou invalidez de credenciais.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// ForbiddenError representa um ator autenticado sem a permissão necessária.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string    { return fmt.Sprintf("Acesso negado: %s", e.Msg) }
func (e *ForbiddenError) Category() string { return "FORBIDDEN" }
func (e *ForbiddenError) HTTPStatus() int  { return http.StatusForbidden } // 403
func (e *ForbiddenError) Unwrap() error    { return nil }

// NewForbiddenError cria um novo erro de permissão.
func NewForbiddenError(msg string) AppError {
	return &ForbiddenError{Msg: msg}
}

// PartialBatchError descreve um lote sequencial interrompido no meio:
// as linhas em Applied já foram gravadas e NÃO são desfeitas.
type PartialBatchError struct {
	Applied     []int
	FailedIndex int
	Err         error
}

func (e *PartialBatchError) Error() string {
	applied := make([]string, len(e.Applied))
	for i, idx := range e.Applied {
		applied[i] = fmt.Sprintf("%d", idx+1)
	}
	return fmt.Sprintf("Lote interrompido na linha %d (linhas aplicadas: [%s]): %v",
		e.FailedIndex+1, strings.Join(applied, ","), e.Err)
}
func (e *PartialBatchError) Category() string { return "PARTIAL_BATCH" }
func (e *PartialBatchError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *PartialBatchError) Unwrap() error    { return e.Err }

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL ou do Redis)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas de armazenamento.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helpers ---

// AsAppError devolve o AppError mais externo da cadeia, se existir.
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if stdErrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Ensure garante que qualquer erro saia da fronteira de uma operação como AppError;
// erros não tipados viram InternalError com a mensagem original.
func Ensure(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAppError(err); ok {
		return err
	}
	return NewInternalError(fmt.Sprintf("%s: %s", msg, err.Error()), err)
}

// Violations extrai a lista de violações de um ValidationError na cadeia.
func Violations(err error) []string {
	var vErr *ValidationError
	if stdErrors.As(err, &vErr) {
		return vErr.Violations
	}
	return nil
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
