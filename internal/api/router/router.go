package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"workshop-funnel/config"
	"workshop-funnel/internal/api/handler"
	"workshop-funnel/internal/api/middleware"
	"workshop-funnel/pkg/jwt"
)

const (
	roleSuperAdmin = "super_admin"
	roleAdmin      = "admin"

	maxBodyBytes = 1 << 20
)

// Deps optional infrastructure used by the router; nil members degrade gracefully
type Deps struct {
	Tokens  middleware.TokenChecker
	Limiter middleware.Limiter
	// Ping reports database health for /health
	Ping func(ctx context.Context) error
}

// Setup builds the gin engine with every route registered
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, deps Deps, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── ops ──
	r.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// share short links live at the root so they stay short
	r.GET("/s/:code", h.Share.Redirect)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// public
		forms := v1.Group("/forms")
		{
			forms.POST("/submit", h.Lead.Submit)
			forms.GET("/stats", h.Lead.Stats)
			forms.POST("/submissions/:id/share", h.Share.TrackShare)
			forms.GET("/submissions/:id/share-stats", h.Share.Stats)
		}
		v1.GET("/attendance/qr/:qrCode", h.Attendance.ValidateQR)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(deps.Limiter, cfg.Auth.LoginRateLimit, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// authenticated
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, deps.Tokens))
		authorized.Use(middleware.RoleAuth(roleSuperAdmin, roleAdmin))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			submissions := authorized.Group("/forms/submissions")
			{
				submissions.GET("", h.Lead.List)
				submissions.GET("/export", h.Export.ExportLeads)
				submissions.GET("/:id", h.Lead.Get)
				submissions.PATCH("/:id", h.Lead.Update)
				submissions.DELETE("/:id", h.Lead.Delete)
			}
			authorized.GET("/forms/analytics", h.Share.Analytics)

			enrollments := authorized.Group("/enrollments")
			{
				enrollments.POST("", h.Enrollment.Create)
				enrollments.GET("", h.Enrollment.List)
				enrollments.GET("/export", h.Export.ExportEnrollments)
				enrollments.GET("/:submissionId", h.Enrollment.Get)
				enrollments.PATCH("/:submissionId", h.Enrollment.Update)
				enrollments.POST("/:submissionId/payment", h.Enrollment.RecordPayment)
				enrollments.POST("/:submissionId/refund", h.Enrollment.Refund)

				revenue := enrollments.Group("/revenue", middleware.RoleAuth(roleSuperAdmin))
				{
					revenue.GET("/terms", h.Revenue.GetTerms)
					revenue.PUT("/terms", h.Revenue.UpdateTerms)
					revenue.GET("/terms/history", h.Revenue.TermsHistory)
					revenue.GET("/metrics", h.Revenue.Metrics)
				}
			}

			attendance := authorized.Group("/attendance")
			{
				attendance.POST("", h.Attendance.Record)
				attendance.GET("", h.Attendance.List)
				attendance.PATCH("/:id", h.Attendance.Update)
				attendance.GET("/calendar/:enrollmentId", h.Attendance.Calendar)
			}

			admin := authorized.Group("/admin", middleware.RoleAuth(roleSuperAdmin))
			{
				admin.GET("/logs", h.Activity.List)
				admin.GET("/error-logs", h.Activity.ListErrors)
			}
		}
	}

	return r
}
