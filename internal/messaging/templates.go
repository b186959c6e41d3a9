package messaging

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"

	"encomendas_backend/internal/utils"
)

const TemplateArrival = "arrival"

const arrivalTemplate = `Olá {{or .ResidentName "morador"}}! 📦 Você tem uma encomenda aguardando na portaria. Registrada por: {{or .RegisteredBy "Portaria"}}. Por favor, retire o mais breve possível.`

// TemplateManager хранит текстовые шаблоны сообщений
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер со стандартными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	if err := tm.AddTemplate(TemplateArrival, arrivalTemplate); err != nil {
		panic(err)
	}
	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data any) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate добавляет или заменяет шаблон
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

// FormatPickupTime - "dd/MM/yyyy, HH:mm" по времени Сан-Паулу
func FormatPickupTime(t time.Time) string {
	return utils.FormatDateTimeBR(t)
}
