package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lukian/user-api/internal/container"
	handlers "github.com/lukian/user-api/internal/interface/http"
	"github.com/lukian/user-api/internal/interface/middleware"
)

// UserModule wires the user CRUD routes:
//
//	POST   /api/users              register
//	GET    /api/users/:id          read one
//	PATCH  /api/users/:id          update email only
//	PUT    /api/users/:id          update all editable fields
//	DELETE /api/users/:id          soft delete
//	GET    /api/users/search       birth-date range search
//	GET    /api/users/search/text  free-text profile search
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	writeLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	users := rg.Group("/users")
	{
		users.POST("", writeLimiter, m.Handler.Register)
		users.GET("/search", readLimiter, m.Handler.SearchByBirthDateRange)
		users.GET("/search/text", readLimiter, m.Handler.SearchProfiles)
		users.GET("/:id", readLimiter, m.Handler.GetByID)
		users.PATCH("/:id", writeLimiter, m.Handler.UpdateEmail)
		users.PUT("/:id", writeLimiter, m.Handler.UpdateAll)
		users.DELETE("/:id", writeLimiter, m.Handler.Delete)
	}
}
