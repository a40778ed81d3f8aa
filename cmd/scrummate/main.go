package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/scrummate/scrummate/config"
	"github.com/scrummate/scrummate/internal/app"
)

func main() {
	cfgPath := flag.String("config", "config.yml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.Run(cfg); err != nil {
		log.Fatalf("app stopped: %v", err)
	}
}
