package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/camsync/internal/camera"
	"github.com/dmitrijs2005/camsync/internal/camera/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := camera.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
