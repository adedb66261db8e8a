package main

import (
	"github.com/cppla/postfeed/config"
	"github.com/cppla/postfeed/models"
	"github.com/cppla/postfeed/routes"
	"github.com/cppla/postfeed/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.Comment{}, &models.PostLike{}, &models.PostView{})
	// Connect early so a bad Redis address shows up in the boot log
	utils.GetRedis()

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	srv := utils.NewGraceServer(":"+cfg.AppPort, r,
		config.CloseDatabase,
		utils.CloseRedis,
		func() { _ = utils.Logger.Sync() },
	)
	if err := srv.ListenAndServe(); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
