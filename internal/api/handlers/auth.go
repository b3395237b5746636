// auth.go — обработчики аутентификации.
// POST /api/auth/login — вход по username/password, выдаёт JWT
// GET  /api/auth/verify — проверка текущего токена
// POST /api/auth/change-password — смена собственного пароля
package handlers

import (
	"net/http"

	apierrors "github.com/skyhigh-intl/inquiry-api/internal/api/errors"
	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// loginRequest — тело запроса входа.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userResponse — публичное представление пользователя.
type userResponse struct {
	UserID      int64    `json:"userId"`
	Username    string   `json:"username"`
	FullName    string   `json:"fullName"`
	Email       *string  `json:"email"`
	Role        string   `json:"role"`
	Department  *string  `json:"department"`
	Permissions []string `json:"permissions"`
}

// loginResponse — ответ успешного входа.
type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		UserID:      u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		Department:  u.Department,
		Permissions: u.Permissions,
	}
}

// Login обрабатывает POST /api/auth/login.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка аутентификации")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// VerifyToken обрабатывает GET /api/auth/verify.
// Токен уже проверен JWT middleware — возвращаем claims.
func (h *APIHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Токен не найден в контексте")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user": map[string]any{
			"userId":      claims.UserID,
			"username":    claims.Username,
			"role":        claims.Role,
			"permissions": claims.Permissions,
		},
	})
}

// changePasswordRequest — тело запроса смены пароля.
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword обрабатывает POST /api/auth/change-password.
// Пользователь меняет собственный пароль, подтвердив текущий.
func (h *APIHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Токен не найден в контексте")
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.auth.ChangePassword(r.Context(), claims.Username, claims.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка смены пароля")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
