package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/veracity-backend/internal/handlers"
	"github.com/yungbote/veracity-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName      string
	AllowOrigins     []string
	AuthMiddleware   *middleware.AuthMiddleware
	RateLimiter      *middleware.RateLimiter
	EvidenceHandler  *handlers.EvidenceHandler
	ChallengeHandler *handlers.ChallengeHandler
	VeracityHandler  *handlers.VeracityHandler
	SourceHandler    *handlers.SourceHandler
	InquiryHandler   *handlers.InquiryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// Reads are public; every mutation goes through auth plus the
	// per-actor rate limit.
	api := router.Group("/api")
	{
		api.GET("/veracity/:kind/:id", cfg.VeracityHandler.GetScore)
		api.GET("/veracity/:kind/:id/history", cfg.VeracityHandler.GetScoreHistory)
		api.GET("/targets/:kind/:id/evidence", cfg.EvidenceHandler.ListByTarget)
		api.GET("/targets/:kind/:id/challenges", cfg.ChallengeHandler.ListOpenByTarget)
		api.GET("/challenges/:id", cfg.ChallengeHandler.Get)
		api.GET("/inquiries/:id", cfg.InquiryHandler.Get)
		api.GET("/sources/:id/credibility", cfg.SourceHandler.GetCredibility)
		api.GET("/users/:id/reputation", cfg.SourceHandler.GetReputation)
	}

	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	if cfg.RateLimiter != nil {
		protected.Use(cfg.RateLimiter.Limit())
	}
	{
		// Evidence
		protected.POST("/evidence", cfg.EvidenceHandler.Submit)
		protected.POST("/evidence/:id/verify", cfg.EvidenceHandler.Verify)
		protected.POST("/evidence/:id/peer-review", cfg.EvidenceHandler.SetPeerReview)
		protected.POST("/evidence/:id/retract", cfg.EvidenceHandler.Retract)
		// Challenges
		protected.POST("/challenges", cfg.ChallengeHandler.Create)
		protected.POST("/challenges/:id/votes", cfg.ChallengeHandler.CastVote)
		protected.POST("/challenges/:id/resolve", cfg.ChallengeHandler.Resolve)
		protected.POST("/challenges/:id/withdraw", cfg.ChallengeHandler.Withdraw)
		// Scores
		protected.POST("/veracity/:kind/:id/recalculate", cfg.VeracityHandler.Recalculate)
		protected.POST("/sources/:id/recalculate", cfg.SourceHandler.Recalculate)
		// Inquiries
		protected.POST("/inquiries/:id/recheck", cfg.InquiryHandler.Recheck)
	}

	return router
}
