package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"timed-quiz-service/internal/app"
)

// NewRouter wires the REST API, the websocket endpoint and health checks.
func NewRouter(service *app.QuizService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
	}))

	api := NewAPIHandler(service)
	ws := NewWSHandler(service)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/ws", gin.WrapF(ws.ServeWS))

	group := r.Group("/api")
	{
		group.GET("/categories", api.Categories)
		group.POST("/sessions", api.StartSession)
		group.GET("/sessions/:id", api.GetSession)
		group.POST("/sessions/:id/answer", api.Answer)
	}
	return r
}
