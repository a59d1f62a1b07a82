// Package session определяет текущего пользователя по заголовку,
// который выставляет аутентифицирующий шлюз перед сервисом.
package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/example/configurator-checkout/internal/domain"
)

const DefaultHeader = "X-User-Id"

type userKey struct{}

// WithUser кладёт пользователя в контекст запроса.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// Middleware переносит идентификатор пользователя из заголовка в контекст.
// Запросы без заголовка проходят дальше анонимными.
func Middleware(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(header))
			if id != "" {
				r = r.WithContext(WithUser(r.Context(), domain.User{ID: id}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Provider реализует domain.SessionProvider поверх контекста запроса.
type Provider struct{}

func (Provider) CurrentUser(ctx context.Context) (domain.User, error) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	if !ok || u.ID == "" {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

var _ domain.SessionProvider = Provider{}
