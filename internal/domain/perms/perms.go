// Пакет perms — логика прав доступа пользователей.
// Права хранятся списком в профиле пользователя; значение "all" —
// wildcard, покрывающий любое право. Административный доступ
// определяется ролью, а не списком прав.
package perms

// PermissionAll — wildcard-право, покрывающее все остальные.
const PermissionAll = "all"

// Роли с административным доступом.
var adminRoles = map[string]bool{
	"Admin":             true,
	"Managing Director": true,
}

// Has проверяет, покрывает ли набор прав указанное право.
func Has(permissions []string, permission string) bool {
	for _, p := range permissions {
		if p == PermissionAll || p == permission {
			return true
		}
	}
	return false
}

// IsAdminRole сообщает, даёт ли роль административный доступ.
func IsAdminRole(role string) bool {
	return adminRoles[role]
}
