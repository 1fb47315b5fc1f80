package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"doorparts-be/internal/analytics"
	"doorparts-be/internal/brand"
	"doorparts-be/internal/category"
	"doorparts-be/internal/config"
	"doorparts-be/internal/customer"
	"doorparts-be/internal/db"
	"doorparts-be/internal/enquiry"
	"doorparts-be/internal/logger"
	"doorparts-be/internal/mailer"
	"doorparts-be/internal/media"
	"doorparts-be/internal/metrics"
	"doorparts-be/internal/middleware"
	"doorparts-be/internal/notification"
	"doorparts-be/internal/order"
	"doorparts-be/internal/payment"
	"doorparts-be/internal/payment/webhook"
	"doorparts-be/internal/product"
	"doorparts-be/internal/review"
	"doorparts-be/internal/staff"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	// Email. Every transactional send lands in the per-recipient email log.
	customerRepo := customer.NewRepository(database)
	sender := customer.NewRecordingSender(
		mailer.NewResendSender(cfg.ResendAPIKey, cfg.MailFromAddress),
		customerRepo,
	)
	customerSvc := customer.NewService(customerRepo)

	staffRepo := staff.NewRepository(database)
	staffSvc := staff.NewService(staffRepo, sender, cfg.StorefrontBaseURL)

	hub := notification.NewHub()
	notificationRepo := notification.NewRepository(database)
	notificationSvc := notification.NewService(notificationRepo, hub)
	announcer := notification.NewAnnouncer(notificationSvc, staffSvc)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	categoryRepo := category.NewRepository(database)
	brandRepo := brand.NewRepository(database)
	mediaRepo := media.NewRepository(database)
	reviewRepo := review.NewRepository(database)
	enquiryRepo := enquiry.NewRepository(database)
	analyticsRepo := analytics.NewRepository(database)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, productSvc, customerSvc, sender, announcer, cfg.AdminAlertAddress)

	gateway := payment.NewPayPalGateway(
		cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret,
		cfg.PayPalWebhookID, cfg.PayPalSkipVerify,
	)
	paymentRepo := payment.NewRepository(database)
	paymentHandler := payment.NewHandler(orderSvc, gateway, paymentRepo)
	webhookHandler := webhook.NewWebhookHandler(orderSvc, gateway, paymentRepo)

	r := mux.NewRouter()
	r.Use(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware,
		middleware.RateLimitMiddleware,
		metrics.Middleware(routeTemplate),
	)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/webhooks/paypal", webhookHandler.WebhookHandler).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(
		middleware.AuthMiddleware,
		middleware.RequireRole(
			string(staff.RoleAdmin), string(staff.RoleManager), string(staff.RoleSupport),
		),
	)

	// Staff management needs the ADMIN role on top of back-office access.
	staffAdmin := admin.NewRoute().Subrouter()
	staffAdmin.Use(middleware.RequireRole(string(staff.RoleAdmin)))

	staff.NewHandler(staffSvc).RegisterRoutes(api, staffAdmin)
	product.NewHandler(productSvc).RegisterRoutes(api, admin)
	category.NewHandler(categoryRepo).RegisterRoutes(api, admin)
	brand.NewHandler(brandRepo).RegisterRoutes(api, admin)
	media.NewHandler(mediaRepo).RegisterRoutes(api, admin)
	review.NewHandler(reviewRepo).RegisterRoutes(api, admin)
	enquiry.NewHandler(enquiryRepo, announcer).RegisterRoutes(api, admin)
	order.NewHandler(orderSvc).RegisterRoutes(api, admin)
	customer.NewHandler(customerSvc).RegisterRoutes(admin)
	analytics.NewHandler(analyticsRepo).RegisterRoutes(admin)
	notification.NewHandler(notificationSvc, hub).RegisterRoutes(api, admin)
	paymentHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Error("graceful shutdown failed", zap.Error(err))
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
