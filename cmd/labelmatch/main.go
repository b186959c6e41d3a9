// Command labelmatch сопоставляет этикетку с жильцами без HTTP сервера
// и выполняет миграции базы.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "labelmatch",
	Short:         "Ferramentas da portaria: casamento de etiquetas e migrações",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.AddCommand(newMatchCmd(), newMigrateCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
