package routes

import (
	"expertise-backend/internal/handlers"
	"expertise-backend/internal/middleware"
	"expertise-backend/internal/pipeline"
	"expertise-backend/internal/services"
	"expertise-backend/internal/session"
	"expertise-backend/internal/storage"
	"expertise-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Deps carries everything the route handlers need.
type Deps struct {
	DB         *gorm.DB
	Store      storage.Storage
	Sessions   session.Store
	Pipeline   *pipeline.Pipeline
	Translator *services.Translator
	Redis      *redis.Client
	Feed       *ws.Manager
}

func SetupRoutes(api *gin.RouterGroup, deps Deps) {
	// Public intake form routes. No authentication: the form session id is
	// the only capability the applicant holds.
	formGroup := api.Group("/form")
	{
		formGroup.GET("/zones", handlers.ListDamageZones())
		formGroup.POST("/sessions", handlers.CreateFormSession(deps.Sessions, deps.Translator))
		formGroup.GET("/sessions/:id", handlers.GetFormSession(deps.Sessions, deps.Translator))
		formGroup.PATCH("/sessions/:id/fields", handlers.UpdateFormFields(deps.Sessions, deps.Translator))
		formGroup.POST("/sessions/:id/damages/toggle", handlers.ToggleDamageZone(deps.Sessions, deps.Translator))
		formGroup.GET("/sessions/:id/diagram", handlers.GetDamageDiagram(deps.Sessions))
		formGroup.POST("/sessions/:id/photos/:category", handlers.UploadFormPhotos(deps.Sessions, deps.Translator))
		formGroup.DELETE("/sessions/:id/photos/:category/:index", handlers.RemoveFormPhoto(deps.Sessions, deps.Translator))
		formGroup.POST("/sessions/:id/next", handlers.NextFormStep(deps.Sessions, deps.Translator))
		formGroup.POST("/sessions/:id/prev", handlers.PrevFormStep(deps.Sessions, deps.Translator))
		formGroup.POST("/sessions/:id/goto", handlers.GoToFormStep(deps.Sessions, deps.Translator))
		formGroup.POST("/sessions/:id/submit", handlers.SubmitForm(deps.Sessions, deps.Pipeline, deps.Feed, deps.Translator))
	}

	// Back-office authentication.
	auth := api.Group("/auth")
	{
		auth.POST("/sign-up", handlers.SignUp(deps.DB))
		auth.POST("/sign-in", handlers.SignIn(deps.DB))
	}

	// Protected back-office routes.
	protected := api.Group("")
	protected.Use(middleware.JWTAuth())
	{
		protected.GET("/auth/me", handlers.GetCurrentUser(deps.DB))

		// Any authenticated account may browse; changing a request's
		// status is reserved for admins.
		admin := protected.Group("/admin")
		{
			admin.GET("/requests", handlers.ListRequests(deps.DB))
			admin.GET("/requests/:id", handlers.GetRequest(deps.DB, deps.Store))
			admin.PUT("/requests/:id/status", middleware.AdminOnly(), handlers.UpdateRequestStatus(deps.DB, deps.Feed))
			admin.GET("/requests/:id/photos.zip", handlers.ExportRequestZip(deps.DB, deps.Store))
			admin.GET("/stats", handlers.GetStats(deps.DB, deps.Redis))
			admin.GET("/stats/export", handlers.ExportStatsExcel(deps.DB))
		}

		// Live feed for the back-office request list.
		protected.GET("/ws", deps.Feed.Handler())
	}
}
