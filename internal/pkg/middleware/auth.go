package middleware

import (
	"context"
	"net/http"
	"strings"

	"gobackoffice/internal/domain"
	apperror "gobackoffice/internal/errors"
	"gobackoffice/internal/pkg/httpx"
	"gobackoffice/internal/pkg/logger"
)

// ContextKey é o tipo das chaves que este pacote grava no contexto.
// Context Keys devem ser não-exportadas e de um tipo único.
type ContextKey int

const (
	actorKey ContextKey = iota
)

// Authenticator valida o token e devolve o ator (implementado pelo userservice).
type Authenticator interface {
	Authenticate(tokenString string) (domain.Actor, error)
}

// NewAuthMiddleware valida o JWT do header Authorization e anexa o Actor ao contexto.
func NewAuthMiddleware(auth Authenticator, log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extrair o Token do Header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				httpx.WriteError(w, r, log, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."))
				return
			}

			// 2. Validar o Token
			actor, err := auth.Authenticate(strings.TrimSpace(tokenString))
			if err != nil {
				httpx.WriteError(w, r, log, err)
				return
			}

			// 3. Anexar o Actor ao Contexto
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor devolve um contexto carregando o ator autenticado.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext é uma função utilitária para extrair o ator no handler.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// RequireManage libera a rota apenas para atores que podem gerenciar o estoque
// (papéis admin e manager).
func RequireManage(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				// O AuthMiddleware não foi executado nesta rota.
				httpx.WriteError(w, r, log, apperror.NewUnauthorizedError("Autorização necessária. Token não processado."))
				return
			}
			if !actor.CanManage {
				log.Warn("Acesso negado a rota de gestão.", map[string]interface{}{
					"user_id": actor.ID,
					"path":    r.URL.Path,
				})
				httpx.WriteError(w, r, log, apperror.NewForbiddenError("Você não tem a permissão necessária."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
