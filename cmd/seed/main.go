package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"videofield/internal/bootstrap"
	"videofield/internal/domain/datafield"
	jwtsvc "videofield/internal/pkg/jwt"
)

func main() {
	userID := flag.Int64("user", 1, "id of the demo user the token is issued for")
	contextID := flag.Int64("context", 100, "context id of the demo database")
	flag.Parse()

	ctx := context.Background()
	app, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	// ================== DATABASE ==================
	data := &datafield.Database{ContextID: *contextID, Name: "Lecture recordings"}
	if err := app.Records.CreateDatabase(ctx, data); err != nil {
		log.Fatal("create database:", err)
	}

	// ================== FIELDS ==================
	video := &datafield.Field{
		DataID:      data.ID,
		Type:        datafield.TypeVideoFile,
		Name:        "Recording",
		Description: "Upload the lecture video or link it from Google Drive",
		Required:    true,
	}
	if err := app.Records.CreateField(ctx, video); err != nil {
		log.Fatal("create video field:", err)
	}
	slides := &datafield.Field{DataID: data.ID, Type: datafield.TypeFile, Name: "Slides"}
	if err := app.Records.CreateField(ctx, slides); err != nil {
		log.Fatal("create file field:", err)
	}

	// ================== RECORD ==================
	rec := &datafield.Record{DataID: data.ID, UserID: *userID}
	if err := app.Records.CreateRecord(ctx, rec); err != nil {
		log.Fatal("create record:", err)
	}

	token, err := jwtsvc.New(app.Config.JWTSecret, app.Config.JWTTTL).GenerateToken(*userID, "student")
	if err != nil {
		log.Fatal("generate token:", err)
	}

	base := app.Config.PublicBaseURL + "/api/v1"
	fmt.Printf("database %d, videofile field %d, file field %d, record %d\n", data.ID, video.ID, slides.ID, rec.ID)
	fmt.Printf("form:   %s/fields/%d/records/%d/form\n", base, video.ID, rec.ID)
	fmt.Printf("browse: %s/fields/%d/records/%d\n", base, video.ID, rec.ID)
	fmt.Printf("token:  %s\n", token)
}
