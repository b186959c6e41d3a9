// @title           Encomendas API
// @version         1.0
// @description     API da portaria: leitura de etiquetas, moradores e encomendas.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	_ "encomendas_backend/docs"
	"encomendas_backend/internal/app"
)

func main() {
	app.Run()
}
