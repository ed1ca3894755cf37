package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"uk.co.dudmesh.courier/internal/boot"
	"uk.co.dudmesh.courier/internal/handlers"
	"uk.co.dudmesh.courier/internal/service/dispatch"
	"uk.co.dudmesh.courier/internal/service/inbound"
	"uk.co.dudmesh.courier/internal/service/tenant"
	"uk.co.dudmesh.courier/internal/store"
	"uk.co.dudmesh.courier/pkg/reply"
	"uk.co.dudmesh.courier/pkg/twilio"
)

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	datastore, err := store.Open(config)
	if err != nil {
		log.Fatalf("opening store: %+v", err)
	}
	defer datastore.Close()

	provider := twilio.NewClient(config.ProviderBaseURL())
	tenantService := tenant.New(datastore)
	dispatcher := dispatch.New(config, datastore, provider)
	processor := inbound.New(datastore, dispatcher, reply.Keyword)

	server := echo.New()
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("courier"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)

	headers := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization}
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     strings.Split(config.Server.Origins, ","),
		AllowHeaders:     headers,
		AllowCredentials: true,
	}))

	server.POST("/webhook/inbound", handlers.InboundWebhook(processor))
	server.POST("/webhook/status", handlers.StatusCallback(processor))

	server.POST("/auth/login", handlers.Login(config))

	operator := server.Group("/tenants", handlers.OperatorAuth(config))
	operator.POST("", handlers.CreateTenant(tenantService))
	operator.GET("", handlers.ListTenants(tenantService))
	operator.GET("/:id", handlers.GetTenant(tenantService))
	operator.PUT("/:id", handlers.UpdateTenant(tenantService))
	operator.DELETE("/:id", handlers.DeleteTenant(tenantService))

	scoped := server.Group("", handlers.TenantAuth(tenantService))
	scoped.GET("/tenant", handlers.GetOwnTenant())
	scoped.POST("/messages/send", handlers.SendMessage(dispatcher))
	scoped.GET("/messages", handlers.ListMessages(datastore))
	scoped.GET("/conversations", handlers.ListConversations(datastore))
	scoped.GET("/conversations/:id/messages", handlers.ListConversationMessages(datastore))

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
