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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"videofield/internal/bootstrap"
	jwtsvc "videofield/internal/pkg/jwt"
	"videofield/internal/server"
)

func main() {
	app, err := bootstrap.New(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	cfg := app.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	r := server.NewRouter(server.Options{
		Log:         app.Log,
		JWT:         j,
		Files:       app.Files,
		Fields:      app.FieldService(),
		CORSOrigins: []string{cfg.PublicBaseURL},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		app.Log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Log.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		app.Log.Error("shutdown", zap.Error(err))
	}
	app.Log.Info("server stopped")
}
