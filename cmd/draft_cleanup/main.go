package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"videofield/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	app, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	cutoff := time.Now().Add(-app.Config.DraftTTL)
	n, err := app.Files.DeleteDraftsOlderThan(ctx, cutoff)
	if err != nil {
		app.Log.Fatal("draft cleanup failed", zap.Error(err))
	}

	app.Log.Info("draft cleanup completed",
		zap.Int("files", n),
		zap.Time("cutoff", cutoff))
}
