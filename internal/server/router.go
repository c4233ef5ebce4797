package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"videofield/internal/domain/filestorage"
	"videofield/internal/middleware"
	"videofield/internal/modules/fieldtype"
	jwtsvc "videofield/internal/pkg/jwt"
)

type Options struct {
	Log         *zap.Logger
	JWT         *jwtsvc.Service
	Files       *filestorage.Service
	Fields      *fieldtype.Service
	CORSOrigins []string
}

// NewRouter wires the HTTP surface: /health, /api/v1 and /pluginfile.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(opts.CORSOrigins...))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	filesHandler := filestorage.NewHandler(opts.Files)
	fieldsHandler := fieldtype.NewHandler(opts.Fields)

	// served outside /api/v1 so generated file URLs stay short; a token
	// is only needed for draft files
	filestorage.RegisterPublicRoutes(r.Group("", middleware.OptionalJWTAuth(opts.JWT)), filesHandler)

	v1 := r.Group("/api/v1")
	{
		fieldtype.RegisterPublicRoutes(v1, fieldsHandler)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(opts.JWT))
		{
			filestorage.RegisterRoutes(protected, filesHandler)
			fieldtype.RegisterRoutes(protected, fieldsHandler)
		}
	}

	return r
}
