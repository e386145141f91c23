package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"welwexpress/internal/auth"
	"welwexpress/internal/catalog"
	"welwexpress/internal/checkout"
	"welwexpress/internal/config"
	"welwexpress/internal/infrastructure/logger"
	"welwexpress/internal/infrastructure/mysql"
	"welwexpress/internal/mail"
	"welwexpress/internal/order"
	"welwexpress/internal/payment"
	"welwexpress/internal/server"
	"welwexpress/internal/store"
	"welwexpress/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTLifetime)
	authMW := auth.NewMiddleware(issuer, zapLogger)
	sender := mail.NewSMTPSender(cfg.Mail)
	stripe := payment.NewStripeClient(cfg.Stripe.BaseURL, cfg.Stripe.SecretKey)

	userRepo := user.NewMySQLRepository(db)

	storeCtrl, storeSvc := store.NewModule(db, userRepo, zapLogger)
	userCtrl := user.NewModule(userRepo, cfg, storeSvc, sender, issuer, zapLogger)
	catalogCtrl, catalogSvc := catalog.NewModule(db, cfg, storeSvc, zapLogger)
	orderCtrl, orderSvc := order.NewModule(db, cfg, userRepo, stripe, sender, zapLogger)
	checkoutCtrl := checkout.NewModule(orderSvc, catalogSvc, userRepo, storeSvc, stripe, sender, cfg, zapLogger)

	router := server.NewRouter(userCtrl, storeCtrl, catalogCtrl, orderCtrl, checkoutCtrl, authMW, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
