package main

import (
	"log"

	"finops-alerting/internal/config"
	"finops-alerting/internal/logging"
	"finops-alerting/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(&logging.LoggerConfig{
		Level:     logging.INFO,
		Component: "finops-alerting",
		Output:    "stdout",
	})
	logger := logging.GetGlobalLogger()

	srv := server.New(cfg, logger)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
