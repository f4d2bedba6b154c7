package cmd

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/controller"
	"github.com/vibast-solutions/ms-go-shop/app/gateway"
	"github.com/vibast-solutions/ms-go-shop/app/middleware"
	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/app/service"
	"github.com/vibast-solutions/ms-go-shop/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP server exposing the auth, catalog and order endpoints.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogging(cfg)

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping redis")
	}

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	resetStore := repository.NewPasswordResetStore(redisClient)

	tokenService := service.NewTokenService(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	emailSender := service.NewSendGridSender(cfg.SendGridKey, cfg.EmailFrom, cfg.EmailTimeout)
	paymentGateway := gateway.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.GatewayTimeout)

	authService := service.NewAuthService(db, userRepo, refreshTokenRepo, tokenService, cfg.AccessTokenTTL)
	resetService := service.NewResetService(userRepo, refreshTokenRepo, resetStore, emailSender, cfg.ResetTokenTTL, cfg.ResetURLBase)
	productService := service.NewProductService(productRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, paymentGateway, cfg.OrderCurrency)

	startHTTPServer(cfg, authService, resetService, productService, orderService)
}

func startHTTPServer(
	cfg *config.Config,
	authService *service.AuthService,
	resetService *service.ResetService,
	productService *service.ProductService,
	orderService *service.OrderService,
) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	authController := controller.NewAuthController(authService)
	resetController := controller.NewResetController(resetService)
	productController := controller.NewProductController(productService)
	orderController := controller.NewOrderController(orderService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	e.POST("/register", authController.Register)
	e.POST("/login", authController.Login)
	e.POST("/refresh", authController.Refresh)
	e.POST("/logout", authController.Logout)
	e.POST("/forgot", resetController.Forgot)
	e.POST("/reset", resetController.Reset)
	e.GET("/get-products", productController.ListProducts)
	e.POST("/create-order", orderController.CreateOrder)
	e.POST("/verify-payment", orderController.VerifyPayment)

	protected := e.Group("", authMiddleware.RequireAuth)
	protected.GET("/user", authController.User)
	protected.POST("/add-product", productController.AddProduct)
	protected.POST("/fetch-orders", orderController.FetchOrders)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func configureLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
