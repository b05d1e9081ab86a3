package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/config"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/db"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/logger"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/metrics"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/middleware"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/order"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/product"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/transport"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/user"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)
	productHandler := product.NewHandler(productSvc)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo)
	orderHandler := order.NewHandler(orderSvc)

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(metrics.Middleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	// Public
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Get("/token", userHandler.RefreshToken)
	r.Get("/products", productHandler.List)
	r.Get("/products/categories", productHandler.Categories)
	r.Get("/products/{id}", productHandler.Get)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		transport.JSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "Server is running",
		})
	})
	r.Handle("/metrics", metrics.Handler())

	// Authenticated users
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/logout", userHandler.Logout)
		r.Put("/users/profile", userHandler.UpdateProfile)

		r.Post("/orders", orderHandler.Create)
		r.Get("/orders/{id}", orderHandler.Get)
		r.Get("/user/orders", orderHandler.ListMine)
		r.Put("/user/orders/{id}/cancel", orderHandler.Cancel)
		r.Put("/user/orders/{id}", orderHandler.Update)
		r.Delete("/user/orders/{id}", orderHandler.Delete)
	})

	// Admin only
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/users", userHandler.List)
		r.Delete("/users/{id}", userHandler.Delete)

		r.Post("/products", productHandler.Create)
		r.Put("/products/{id}", productHandler.Update)
		r.Delete("/products/{id}", productHandler.Delete)

		r.Get("/orders", orderHandler.ListAll)
		r.Put("/orders/{id}/status", orderHandler.SetStatus)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.L().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("shutdown failed", zap.Error(err))
	}
}
