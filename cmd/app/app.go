package main

import (
	"os"

	"github.com/DRSN-tech/storefront/internal/app"
	config "github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Витрина: каталог из двух источников, локальные товары, корзина и заказы.
//	@host			localhost:8080
//	@BasePath		/api/v1
func main() {
	logCfg := config.LoadLogCfg()
	log := logger.NewZapLogger(&logger.Config{
		Level:  logCfg.Level,
		Format: logCfg.Format,
		Output: "stdout",
	})

	code := run(log)
	_ = log.Sync()
	os.Exit(code)
}

func run(log *logger.ZapLogger) int {
	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		return 1
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		return 1
	}

	if err := application.Run(); err != nil {
		return 1
	}

	return 0
}
