// auth.go — JWT middleware для аутентификации и авторизации.
// Токены подписываются самим сервисом (HS256) при входе пользователя.
// Claims несут имя пользователя, роль и список прав; имя пользователя
// дальше уходит в аудит-контекст транзакций БД.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/skyhigh-intl/inquiry-api/internal/api/errors"
	"github.com/skyhigh-intl/inquiry-api/internal/domain/perms"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyClaims — извлечённые claims в контексте запроса.
const ContextKeyClaims contextKey = "jwt_claims"

// AuthClaims — данные аутентифицированного пользователя из JWT.
// Помещаются в контекст запроса для downstream handlers.
type AuthClaims struct {
	// UserID — ID пользователя в БД.
	UserID int64
	// Username — логин; используется как имя в аудит-полях.
	Username string
	// Role — роль пользователя.
	Role string
	// Permissions — список прав ("all" — wildcard).
	Permissions []string
}

// HasPermission проверяет наличие права с учётом wildcard.
func (c *AuthClaims) HasPermission(permission string) bool {
	return perms.Has(c.Permissions, permission)
}

// IsAdmin сообщает, имеет ли пользователь административную роль.
func (c *AuthClaims) IsAdmin() bool {
	return perms.IsAdminRole(c.Role)
}

// tokenClaims — raw claims из JWT для парсинга.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID      int64    `json:"userId"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// JWTAuth — middleware для JWT-аутентификации (HS256, общий секрет).
type JWTAuth struct {
	secret []byte
	logger *slog.Logger
}

// NewJWTAuth создаёт JWT middleware.
// secret — общий секрет подписи (IQ_JWT_SECRET).
func NewJWTAuth(secret string, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		secret: []byte(secret),
		logger: logger.With(slog.String("component", "jwt_auth")),
	}
}

// Parse валидирует токен и возвращает claims.
func (j *JWTAuth) Parse(tokenString string) (*AuthClaims, error) {
	raw := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, raw,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return &AuthClaims{
		UserID:      raw.UserID,
		Username:    raw.Username,
		Role:        raw.Role,
		Permissions: raw.Permissions,
	}, nil
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Извлекает Bearer token, валидирует подпись и помещает claims в контекст.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}
			if parts[1] == "" {
				apierrors.Unauthorized(w, "Пустой Bearer token")
				return
			}

			claims, err := j.Parse(parts[1])
			if err != nil {
				j.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext извлекает claims из контекста запроса.
// Возвращает nil, если запрос не проходил через JWT middleware.
func ClaimsFromContext(ctx context.Context) *AuthClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*AuthClaims)
	return claims
}

// Username возвращает имя пользователя из контекста, либо пустую строку.
func Username(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Username
	}
	return ""
}

// RequirePermission возвращает middleware, требующий указанное право.
// Должен использоваться ПОСЛЕ JWTAuth.Middleware().
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				apierrors.Unauthorized(w, "Требуется аутентификация")
				return
			}
			if !claims.HasPermission(permission) {
				apierrors.Forbidden(w, "Недостаточно прав")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin возвращает middleware, требующий административную роль.
// Должен использоваться ПОСЛЕ JWTAuth.Middleware().
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				apierrors.Unauthorized(w, "Требуется аутентификация")
				return
			}
			if !claims.IsAdmin() {
				apierrors.Forbidden(w, "Требуется административный доступ")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
