package handler

import (
	"libraryhub/internal/microservices/http-api/middleware"
	"libraryhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Auth       service.AuthService
	Ledger     service.LedgerService
	Summarizer BookSummarizer
	DB         Pinger // optional
}

// NewRouter wires every HTTP route of the API onto a gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	if deps.DB != nil {
		r.GET("/check-conn", CheckConn(deps.DB))
	}

	NewAIHandler(deps.Summarizer).RegisterRoutes(r.Group("/ai"))

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(deps.Auth), middleware.LoadCaller(deps.Ledger))
	{
		NewBookHandler(deps.Ledger).RegisterRoutes(api.Group("/books"))
		api.GET("/me", NewProfileHandler(deps.Ledger).Me)
	}

	return r
}
