package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ahmednour/giving/config"
	"github.com/ahmednour/giving/internal/api/handler"
	"github.com/ahmednour/giving/internal/api/middleware"
	"github.com/ahmednour/giving/pkg/jwt"
	"github.com/ahmednour/giving/pkg/redis"
)

// maxBodyBytes 全局请求体上限（1MB）
const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，带限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 捐赠模块（公开只读）
		v1.GET("/donations", h.Donation.ListDonations)
		v1.GET("/donations/stats", h.Donation.GetDonationStats)
		v1.GET("/donations/:id", h.Donation.GetDonation)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户模块
			authorized.PUT("/users/me", h.User.UpdateProfile)

			// 捐赠模块（写操作）
			donations := authorized.Group("/donations")
			{
				donations.POST("", middleware.RoleAuth("donor", "admin"), h.Donation.CreateDonation)
				donations.GET("/mine", middleware.RoleAuth("donor", "admin"), h.Donation.ListMyDonations)
				donations.GET("/pending-requests", middleware.RoleAuth("donor", "admin"), h.Donation.ListPendingOverview)
				donations.PUT("/:id", middleware.RoleAuth("donor", "admin"), h.Donation.UpdateDonation)
				donations.DELETE("/:id", middleware.RoleAuth("donor", "admin"), h.Donation.DeleteDonation)
			}

			// 申请模块
			requests := authorized.Group("/requests")
			{
				requests.POST("", middleware.RoleAuth("receiver"), h.Request.CreateRequest)
				requests.GET("/mine", middleware.RoleAuth("receiver"), h.Request.ListMyRequests)
				requests.GET("/incoming", middleware.RoleAuth("donor", "admin"), h.Request.ListIncomingRequests)
				requests.GET("/:id", h.Request.GetRequest)
				requests.PUT("/:id/status", middleware.RoleAuth("donor", "admin"), h.Request.UpdateRequestStatus)
				requests.DELETE("/:id", middleware.RoleAuth("receiver", "admin"), h.Request.DeleteRequest)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.ListMyNotifications)
				notifications.PUT("/read-all", h.Notification.MarkAllNotificationsRead)
				notifications.PUT("/:id/read", h.Notification.MarkNotificationRead)
			}

			// 管理模块
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth("admin"))
			{
				admin.GET("/users", h.Admin.ListUsers)
				admin.GET("/users/:id", h.Admin.GetUser)
				admin.PUT("/users/:id/active", h.Admin.SetUserActive)
				admin.GET("/requests", h.Admin.ListAllRequests)
				admin.GET("/requests/pending", h.Admin.ListPendingRequests)
				admin.GET("/requests/stats", h.Admin.GetRequestStats)
				admin.GET("/stats", h.Admin.GetPlatformStats)
				admin.GET("/export/donations", h.Export.ExportDonations)
			}
		}
	}

	return r
}
