package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/informator/internal/backend"
	"github.com/Nixie-Tech-LLC/informator/internal/config"
	"github.com/Nixie-Tech-LLC/informator/internal/http/api"
	adminapi "github.com/Nixie-Tech-LLC/informator/internal/http/api/admin/endpoints"
	tvapi "github.com/Nixie-Tech-LLC/informator/internal/http/api/tv/endpoints"
	"github.com/Nixie-Tech-LLC/informator/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/informator/internal/kv"
	"github.com/Nixie-Tech-LLC/informator/internal/modules"
	"github.com/Nixie-Tech-LLC/informator/internal/registry"
	"github.com/Nixie-Tech-LLC/informator/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store kv.Store, changes backend.Bus, reg *registry.Registry, files storage.Storage) {
	r.Use(middleware.RequestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		adminapi.ScreenModule(reg),
		adminapi.ContentModule(modules.NewStore(reg), files),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		tvapi.ScreenModule(tvapi.NewTvController(store, changes, cfg.PollInterval)),
	)

	// Static content
	if !cfg.UseSpaces {
		r.Static(uploadsURL, cfg.UploadDir)
	}
}
