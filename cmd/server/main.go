package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/teleshelf/teleshelf/internal/app"
	"github.com/teleshelf/teleshelf/internal/config"
)

func main() {

	// a missing .env file is fine, the environment still applies
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	a.Run(ctx)

}
