package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/mchow01/marketnews/db"
	"github.com/mchow01/marketnews/internal/config"
	"github.com/mchow01/marketnews/internal/handler"
	"github.com/mchow01/marketnews/internal/logging"
	"github.com/mchow01/marketnews/internal/repository"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logger := logging.Init(cfg.Log.Format, cfg.Log.Level)

	if err := cfg.ValidateDatabase(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	articleRepo := repository.NewArticleRepository(conn, cfg.Database.Timeout)
	articleHandler := handler.NewArticleHandler(articleRepo, logger)

	r := gin.Default()
	r.SetHTMLTemplate(handler.Templates(time.Now))

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.API.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.API.FrontendURL)
	}

	logger.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.GET("/", articleHandler.Index)
	r.GET("/article/:id", articleHandler.ArticleDetail)
	r.GET("/health", articleHandler.GetHealth)

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))
	api.GET("/articles", articleHandler.APIList)
	api.GET("/articles/:id", articleHandler.APIGet)

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api listening", "addr", cfg.API.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("error running server: %v", err)
	}
}
