package main

import (
	"github.com/singhastra/microfeedx/config"
	"github.com/singhastra/microfeedx/models"
	"github.com/singhastra/microfeedx/routes"
	"github.com/singhastra/microfeedx/storage"
	"github.com/singhastra/microfeedx/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Profile{},
		&models.Post{},
		&models.Like{},
		&models.Folder{},
		&models.Image{},
	)

	objects, err := storage.NewClient(cfg)
	if err != nil {
		utils.Sugar.Fatalf("object storage init failed: %v", err)
	}

	r := routes.SetupRouter(db, objects)

	addr := ":" + cfg.AppPort
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		utils.Sugar.Infof("Starting TLS server on port %s (graceful)", cfg.AppPort)
		err = utils.GraceServerTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
		err = utils.GraceServer(addr, r)
	}
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
