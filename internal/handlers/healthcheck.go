package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/leafkeep/plantcare-backend/internal/services"
)

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Readiness reports the state of the database and the recognizer. A degraded
// recognizer does not fail readiness; identification is the only feature
// that needs it.
func Readiness(db *gorm.DB, recognizer services.Recognizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"database": "ok", "recognizer": "ok"}
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if recognizer == nil || !recognizer.Healthy(c.Request.Context()) {
			status["recognizer"] = "degraded"
		}
		c.JSON(code, status)
	}
}
