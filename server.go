package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"socialgw/api/handlers"
	"socialgw/api/middleware"
	"socialgw/api/routes"
	"socialgw/config"
	"socialgw/services"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting gateway...", config.AppConfig.Backend.BaseURL)

	if err := services.InitRedis(); err != nil {
		// Без Redis шлюз работает, просто без кешей
		log.Printf("Warning: Redis initialization failed: %v", err)
	}

	if err := services.InitRabbitMQ(); err != nil {
		log.Printf("Warning: RabbitMQ initialization failed: %v", err)
	} else {
		if err := services.StartNotifyConsumer(context.Background(), "notify_push"); err != nil {
			log.Printf("Warning: notify consumer failed to start: %v", err)
		}
	}

	handlers.SetUpstreamClient(services.NewUpstreamClientFromConfig())

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.PrometheusMiddleware("socialgw"))
	router.Use(middleware.RouteGuard())

	routes.PublicApi(router)

	port := config.AppConfig.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := router.Run(fmt.Sprintf(":%d", port)); err != nil {
		panic(err)
	}
}
