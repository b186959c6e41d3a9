package main

import (
	"encomendas_backend/database"
	"encomendas_backend/internal/config"
	"encomendas_backend/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Cria ou atualiza as tabelas (AutoMigrate)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetConfig()
			logger.Init(cfg.Server.Env)

			db, err := database.Connect(cfg.Database.DSN, false)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			logger.Info("Migrations applied")
			return nil
		},
	}
}
