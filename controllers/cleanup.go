package controllers

import (
	"log"
	"net/http"

	"github.com/salmanshahriar/whos-fake/services/game"

	"github.com/gin-gonic/gin"
)

// @Summary Deletes stale rooms
// @Description Removes every room inactive for longer than the stale threshold, players included. Meant to be hit by an external cron; safe to re-run.
// @Tags misc
// @Produce json
// @Success 200 {object} object{success=bool}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /cleanup [get]
func Cleanup(svc *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := svc.SweepStaleRooms(c.Request.Context())
		if err != nil {
			log.Printf("Error cleaning up stale rooms: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		if deleted > 0 {
			log.Printf("Cleanup removed %d stale rooms", deleted)
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
