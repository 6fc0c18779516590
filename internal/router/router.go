package router

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"aura/internal/handlers"
)

// Setup builds the gin engine with the motor telemetry ingest surface and the
// researcher dashboard.
func Setup(log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	motorHandler := handlers.NewMotorHandler(log)
	resultsHandler := handlers.NewResultsHandler(log)

	motor := router.Group("/motor")
	{
		motor.GET("/config", motorHandler.EngineConfig)
		motor.POST("/trace", motorHandler.Trace)
		motor.POST("/attempts", motorHandler.Attempts)
		motor.POST("/summary/round", motorHandler.RoundSummary)
		motor.POST("/summary/session", motorHandler.SessionSummary)
	}

	router.PATCH("/results/session/performance", resultsHandler.PatchPerformance)
	router.GET("/dashboard/participant/:id", resultsHandler.Dashboard)

	return router
}
