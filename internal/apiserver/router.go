package apiserver

import (
	"github.com/gin-gonic/gin"

	"github.com/veaiops/veaiops/internal/apiserver/handler"
)

// handlers bundles every HTTP handler installed on the API server.
type handlers struct {
	events      *handler.EventHandler
	subscribes  *handler.SubscribeHandler
	strategies  *handler.StrategyHandler
	bots        *handler.BotHandler
	datasources *handler.DatasourceHandler
	tasks       *handler.TaskHandler
	qapairs     *handler.QAPairHandler
	knowledge   *handler.KnowledgeHandler
	messages    *handler.MessageHandler
}

// installRoutes registers all API routes under /api/v1.
func installRoutes(engine *gin.Engine, h *handlers) {
	v1 := engine.Group("/api/v1")

	events := v1.Group("/events")
	{
		events.POST("", h.events.Create)
		events.GET("", h.events.List)
		events.GET("/:id", h.events.Get)
		events.POST("/:id/dispatch", h.events.Dispatch)
		events.GET("/:id/notices", h.events.ListNotices)
	}

	subscribes := v1.Group("/subscribes")
	{
		subscribes.POST("", h.subscribes.Create)
		subscribes.GET("", h.subscribes.List)
		subscribes.GET("/:id", h.subscribes.Get)
		subscribes.PUT("/:id", h.subscribes.Update)
		subscribes.DELETE("/:id", h.subscribes.Delete)
	}

	strategies := v1.Group("/strategies")
	{
		strategies.POST("", h.strategies.Create)
		strategies.GET("", h.strategies.List)
		strategies.GET("/:id", h.strategies.Get)
		strategies.PUT("/:id", h.strategies.Update)
		strategies.DELETE("/:id", h.strategies.Delete)
	}

	bots := v1.Group("/bots")
	{
		bots.POST("", h.bots.Create)
		bots.GET("", h.bots.List)
		bots.GET("/:id", h.bots.Get)
		bots.PUT("/:id", h.bots.Update)
		bots.DELETE("/:id", h.bots.Delete)
	}

	datasources := v1.Group("/datasources")
	{
		datasources.POST("", h.datasources.Create)
		datasources.GET("", h.datasources.List)
		datasources.GET("/:id", h.datasources.Get)
		datasources.PUT("/:id", h.datasources.Update)
		datasources.DELETE("/:id", h.datasources.Delete)
		datasources.POST("/:id/test", h.datasources.Test)
	}

	tasks := v1.Group("/tasks")
	{
		tasks.POST("", h.tasks.Create)
		tasks.GET("", h.tasks.List)
		tasks.GET("/:id", h.tasks.Get)
	}

	qapairs := v1.Group("/qapairs")
	{
		qapairs.POST("", h.qapairs.Create)
		qapairs.GET("", h.qapairs.List)
		qapairs.GET("/:id", h.qapairs.Get)
		qapairs.PUT("/:id", h.qapairs.Update)
		qapairs.DELETE("/:id", h.qapairs.Delete)
		qapairs.POST("/:id/review", h.qapairs.Review)
	}

	v1.POST("/knowledge/search", h.knowledge.Search)

	messages := v1.Group("/messages")
	{
		messages.POST("/lark", h.messages.LarkCallback)
		messages.GET("", h.messages.List)
	}
}
