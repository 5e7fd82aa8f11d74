package main

import (
	"context"
	"log"
	"os"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/buildinfo"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
