package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	ResidentService    ResidentService
	LabelService       LabelService
	PackageService     PackageService
	CondominiumService CondominiumService
}
