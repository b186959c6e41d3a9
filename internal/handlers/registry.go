package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	ResidentHandler    *ResidentHandler
	LabelHandler       *LabelHandler
	PackageHandler     *PackageHandler
	CondominiumHandler *CondominiumHandler
	FileHandler        *FileHandler
}
