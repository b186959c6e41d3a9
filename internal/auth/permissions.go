package auth

import (
	"errors"

	"encomendas_backend/internal/models"
)

// Разрешения
const (
	PermPackagesRead     = "packages:read"
	PermPackagesRegister = "packages:register"
	PermPackagesPickup   = "packages:pickup"
	PermPackagesExport   = "packages:export"
	PermResidentsRead    = "residents:read"
	PermResidentsWrite   = "residents:write"
	PermCondominiumWrite = "condominium:write"
)

// Permissions список разрешений по ролям
var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		PermPackagesRead,
		PermPackagesRegister,
		PermPackagesPickup,
		PermPackagesExport,
		PermResidentsRead,
		PermResidentsWrite,
		PermCondominiumWrite,
	},
	models.UserRoleDoorman: {
		PermPackagesRead,
		PermPackagesRegister,
		PermPackagesPickup,
		PermResidentsRead,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// CanPerformAction проверяет может ли пользователь выполнить действие
func CanPerformAction(claims *Claims, permission string) bool {
	return HasPermission(models.UserRole(claims.Role), permission)
}

// IsAdmin проверяет является ли пользователь администратором
func IsAdmin(claims *Claims) bool {
	return models.UserRole(claims.Role) == models.UserRoleAdmin
}

// ValidateRole проверяет валидность роли
func ValidateRole(role string) error {
	if !models.UserRole(role).IsValid() {
		return errors.New("invalid role")
	}
	return nil
}
