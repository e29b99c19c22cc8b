package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/Shiva182004/Paytm/internal/app"
	"github.com/Shiva182004/Paytm/internal/app/handlers"
	"github.com/Shiva182004/Paytm/internal/config"
	security "github.com/Shiva182004/Paytm/internal/jwt-new"
	"github.com/Shiva182004/Paytm/internal/jwt-new/jwtmiddleware"
	"github.com/Shiva182004/Paytm/internal/lib/logger"
	"github.com/Shiva182004/Paytm/internal/lib/logger/handlers/urllog"
	"github.com/Shiva182004/Paytm/internal/service"
	"github.com/Shiva182004/Paytm/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД
	userRepo := storage.NewUserRepository(application.DB)
	accountRepo := storage.NewAccountRepository(application.DB)

	// менеджер токенов: секрет задается один раз из конфига
	tokens := security.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TokenTTL)*time.Minute)

	authService := service.NewAuthService(application.Logger, application.DB, userRepo, accountRepo, tokens)
	userService := service.NewUserService(application.Logger, userRepo)
	directoryService := service.NewDirectoryService(application.Logger, userRepo)

	router.Route("/api/v1/user", func(r chi.Router) {
		// эндпоинты регистрации и входа
		r.Post("/signup", handlers.SignupHandler(application.Logger, authService))
		r.Post("/signin", handlers.SigninHandler(application.Logger, authService))
		// открытый справочник пользователей (без аутентификации, как в исходном API)
		r.Get("/bulk", handlers.BulkHandler(application.Logger, directoryService))

		r.Group(func(r chi.Router) {
			jwtMW := jwtmiddleware.NewJWTMiddleware(tokens)
			r.Use(jwtMW)
			// эндпоинт для частичного обновления профиля
			r.Put("/", handlers.UpdateHandler(application.Logger, userService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
