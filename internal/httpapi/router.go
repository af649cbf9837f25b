package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/client-portal/internal/common"
	"github.com/suPer8Hu/client-portal/internal/httpapi/handlers"
	"github.com/suPer8Hu/client-portal/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(h.Log))
	r.Use(middleware.RequestLogger(h.Log))
	r.Use(middleware.CORS(h.Cfg.CORSOrigins))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	api := r.Group("/api")

	// auth
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	authGroup := api.Group("/")
	authGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	// client
	authGroup.POST("/onboarding/submit", h.SubmitOnboarding)
	authGroup.GET("/client/me", h.ClientMe)
	authGroup.PATCH("/client/settings", h.UpdateSettings)
	authGroup.GET("/client/milestones", h.ClientMilestones)

	// documents
	authGroup.POST("/generate-document", h.GenerateDocument)
	authGroup.GET("/documents/list", h.ListDocuments)
	authGroup.GET("/documents/types", h.DocumentTypes)
	authGroup.GET("/documents/:type", h.GetDocument)

	// chat
	authGroup.POST("/chat", h.SendChatMessage)
	authGroup.GET("/chat", h.ListChatMessages)

	// agents
	authGroup.GET("/ai-agents", h.ListAgents)
	authGroup.POST("/ai-agents/:agent", h.RunAgent)

	adminGroup := authGroup.Group("/admin")
	adminGroup.Use(middleware.AdminRequired(h.DB))
	adminGroup.GET("/clients", h.AdminListClients)
	adminGroup.GET("/clients/:id", h.AdminClientDetail)
	adminGroup.DELETE("/clients/:id", h.AdminDeleteClient)
	adminGroup.POST("/clients/:id/resend-webhook", h.AdminResendWebhook)
	adminGroup.DELETE("/clients/:id/links/:linkId", h.AdminDeleteLink)
	adminGroup.GET("/chats", h.AdminChats)
	adminGroup.PATCH("/chats/messages/:id/flag", h.AdminFlagMessage)
	adminGroup.GET("/milestones", h.AdminListMilestones)
	adminGroup.POST("/milestones", h.AdminCreateMilestone)
	adminGroup.PATCH("/milestones", h.AdminUpdateMilestone)
	adminGroup.DELETE("/milestones", h.AdminDeleteMilestone)
	adminGroup.POST("/milestones/suggest", h.AdminSuggestMilestones)
	adminGroup.POST("/milestones/apply", h.AdminApplyMilestones)
	adminGroup.POST("/gift-recommendation", h.AdminGiftRecommendation)

	return r
}
