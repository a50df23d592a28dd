package routes

import (
	"github.com/salmanshahriar/whos-fake/controllers"
	"github.com/salmanshahriar/whos-fake/services/game"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, svc *game.Service) {
	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	// Reaper trigger, meant for an external cron
	api.GET("/cleanup", controllers.Cleanup(svc))

	rooms := api.Group("/rooms")
	{
		rooms.POST("", controllers.CreateRoom(svc))
		rooms.POST("/join", controllers.JoinRoom(svc))
		rooms.GET("/:room_id", controllers.GetRoomInfo(svc))
		rooms.GET("/:room_id/players", controllers.ListRoomPlayers(svc))
		rooms.PATCH("/:room_id/settings", controllers.UpdateSettings(svc))
		rooms.POST("/:room_id/start", controllers.StartGame(svc))
		rooms.POST("/:room_id/return", controllers.ReturnToLobby(svc))
		rooms.DELETE("/:room_id", controllers.CloseRoom(svc))
	}

	api.POST("/leave", controllers.LeaveRoom())
}
