package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaluSL/planimbly/config"
	"github.com/SaluSL/planimbly/internal/api/handler"
	"github.com/SaluSL/planimbly/internal/api/middleware"
	"github.com/SaluSL/planimbly/pkg/jwt"
	"github.com/SaluSL/planimbly/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单校验关闭，限流退化为进程内实现
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	supervisor := middleware.RoleAuth(jwt.RoleSupervisor)
	writeLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 会话
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 工作场所
			workplaces := authorized.Group("/workplaces")
			{
				workplaces.GET("", h.Workplace.ListWorkplaces)
				workplaces.GET("/:id", h.Workplace.GetWorkplace)
				workplaces.POST("", supervisor, h.Workplace.CreateWorkplace)
				workplaces.PUT("/:id", supervisor, h.Workplace.UpdateWorkplace)
				workplaces.DELETE("/:id", supervisor, h.Workplace.DeleteWorkplace)
			}

			// 员工（主管或本人，Service 层鉴权）
			employees := authorized.Group("/employees")
			{
				employees.GET("", h.Employee.ListEmployees)
				employees.GET("/:id", h.Employee.GetEmployee)
				employees.PUT("/:id/workplaces", supervisor, h.Employee.UpdateWorkplaces)
				employees.GET("/:id/balance", h.Assignment.GetBalance)
			}

			// 班次定义
			shiftTypes := authorized.Group("/shift-types")
			{
				shiftTypes.GET("", h.ShiftType.ListShiftTypes)
				shiftTypes.GET("/:id", h.ShiftType.GetShiftType)
				shiftTypes.POST("", supervisor, h.ShiftType.CreateShiftType)
				shiftTypes.PUT("/:id", supervisor, h.ShiftType.UpdateShiftType)
				shiftTypes.DELETE("/:id", supervisor, h.ShiftType.DeleteShiftType)
			}

			// 偏好
			preferences := authorized.Group("/preferences")
			{
				preferences.GET("", h.Preference.ListPreferences)
				preferences.POST("", h.Preference.CreatePreference)
				preferences.PUT("/:id", h.Preference.UpdatePreference)
				preferences.DELETE("/:id", h.Preference.DeletePreference)
			}

			// 缺勤
			absences := authorized.Group("/absences")
			{
				absences.GET("", h.Absence.ListAbsences)
				absences.GET("/:id", h.Absence.GetAbsence)
				absences.POST("", h.Absence.CreateAbsence)
				absences.PUT("/:id", h.Absence.UpdateAbsence)
				absences.DELETE("/:id", h.Absence.DeleteAbsence)
			}

			// 年度工时配额
			jobTimes := authorized.Group("/job-times")
			{
				jobTimes.GET("", h.JobTime.ListJobTimes)
				jobTimes.PUT("", supervisor, h.JobTime.UpsertJobTime)
				jobTimes.DELETE("", supervisor, h.JobTime.DeleteJobTime)
			}

			// 公休日
			freeDays := authorized.Group("/free-days")
			{
				freeDays.GET("", h.FreeDay.ListFreeDays)
				freeDays.POST("", supervisor, h.FreeDay.CreateFreeDay)
				freeDays.POST("/import", supervisor, h.FreeDay.ImportFreeDays)
				freeDays.PUT("/:id", supervisor, h.FreeDay.UpdateFreeDay)
				freeDays.DELETE("/:id", supervisor, h.FreeDay.DeleteFreeDay)
			}

			// 排班分配
			assignments := authorized.Group("/assignments")
			{
				assignments.GET("", h.Assignment.ListAssignments)
				assignments.GET("/logs", h.Assignment.ListAssignmentLogs)
				assignments.POST("/propose", h.Assignment.ProposeAssignment)
				assignments.POST("", writeLimit, h.Assignment.CommitAssignment)
				assignments.DELETE("/:id", writeLimit, h.Assignment.RevokeAssignment)
			}

			// 导出
			export := authorized.Group("/export")
			{
				export.GET("/roster", supervisor, h.Export.ExportRoster)
				export.GET("/employees/:id/calendar.ics", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
