package cmd

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-jobboard/app/controller"
	jobboardgrpc "github.com/vibast-solutions/ms-go-jobboard/app/grpc"
	"github.com/vibast-solutions/ms-go-jobboard/app/mailer"
	"github.com/vibast-solutions/ms-go-jobboard/app/metrics"
	"github.com/vibast-solutions/ms-go-jobboard/app/middleware"
	"github.com/vibast-solutions/ms-go-jobboard/app/ratelimit"
	"github.com/vibast-solutions/ms-go-jobboard/app/repository"
	"github.com/vibast-solutions/ms-go-jobboard/app/service"
	"github.com/vibast-solutions/ms-go-jobboard/config"

	"github.com/go-redis/redis/v9"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the job board service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type services struct {
	userAuth    service.UserAuthService
	application *service.ApplicationService
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	mail, err := newMailer(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure mailer")
	}

	limiter, closeLimiter, err := newResetLimiter(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure rate limiter")
	}
	defer closeLimiter()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewMetrics(registry)

	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)

	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, time.Now)
	svcs := services{
		userAuth: service.NewUserAuthService(userRepo, tokens, mail, cfg,
			service.WithResetLimiter(limiter),
			service.WithEventRecorder(recorder),
		),
		application: service.NewApplicationService(jobRepo, applicationRepo,
			service.WithApplicationEventRecorder(recorder),
		),
	}

	grpcServer, err := startGRPCServer(cfg, svcs)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start gRPC server")
	}
	defer grpcServer.GracefulStop()

	e := newHTTPServer(cfg, svcs, registry)
	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Failed to shut down HTTP server")
	}
}

func newMailer(ctx context.Context, cfg *config.Config) (mailer.Mailer, error) {
	if cfg.Mail.Driver == config.MailDriverSES {
		sesMailer, err := mailer.NewSESMailerFromConfig(ctx, cfg.Mail)
		if err != nil {
			return nil, err
		}
		return sesMailer, nil
	}
	logrus.Warn("MAIL_DRIVER=log: reset emails are written to the log")
	return mailer.NewLogMailer(logrus.StandardLogger()), nil
}

func newResetLimiter(cfg *config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.Redis.URL == "" {
		return ratelimit.Noop{}, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	closeFn := func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis client")
		}
	}
	return ratelimit.NewRedis(client, "forgot-password", cfg.Redis.ForgotPasswordLimit, time.Now), closeFn, nil
}

func newHTTPServer(cfg *config.Config, svcs services, registry *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = controller.ErrorHandler

	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"request_id": v.RequestID,
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

	authController := controller.NewAuthController(svcs.userAuth, cfg.Mail.PublicBaseURL)
	applicationController := controller.NewApplicationController(svcs.application)
	authMiddleware := middleware.NewAuthMiddleware(svcs.userAuth)

	api := e.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/signup", authController.Signup)
	users.POST("/login", authController.Login)
	users.POST("/forgot-password", authController.ForgotPassword)
	users.PATCH("/reset-password/:token", authController.ResetPassword)
	users.POST("/reset-password/:token", authController.ResetPassword)
	users.PATCH("/update-password", authController.UpdatePassword, authMiddleware.Protect)

	api.POST("/jobs", applicationController.CreateJob, authMiddleware.Protect)
	api.POST("/applications/apply-for-job/:jobId", applicationController.ApplyForJob, authMiddleware.Protect)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return e
}

func startGRPCServer(cfg *config.Config, svcs services) (*grpc.Server, error) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return nil, err
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(jobboardgrpc.ProtectUnaryInterceptor(svcs.userAuth)))
	jobboardgrpc.RegisterAuthServiceServer(grpcServer,
		jobboardgrpc.NewAuthServer(svcs.userAuth, svcs.application, cfg.Mail.PublicBaseURL))

	go func() {
		logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
		if err := grpcServer.Serve(lis); err != nil {
			logrus.WithError(err).Fatal("Failed to start gRPC server")
		}
	}()
	return grpcServer, nil
}
