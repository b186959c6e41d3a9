package validator

import (
	"log"
	"regexp"
	"strings"

	"encomendas_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// "+" и 10-15 цифр, допускается префикс whatsapp:
var phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// registerCustomRules регистрирует кастомные правила валидации
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// правило не зарегистрировалось - приложение не должно стартовать
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-package-status", validatePackageStatus)
	mustRegister("is-user-role", validateUserRole)
	mustRegister("br-phone", validatePhone)
}

func validatePackageStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // для пустых значений есть 'required'
	}
	return models.PackageStatus(value).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.UserRole(value).IsValid()
}

func validatePhone(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return IsPhone(value)
}

// IsPhone проверяет номер, игнорируя пробелы, скобки и дефисы
func IsPhone(value string) bool {
	value = strings.TrimPrefix(value, "whatsapp:")
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, value)
	return phoneRe.MatchString(cleaned)
}
