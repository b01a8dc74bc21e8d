package routes

import (
	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/schooldesk/internal/app/auth"
	"github.com/yigit/schooldesk/internal/app/controllers"
	"github.com/yigit/schooldesk/internal/app/models/dto/enums"
	"github.com/yigit/schooldesk/internal/middleware"
)

// Controllers groups the handlers SetupRouter mounts.
type Controllers struct {
	Lookup   *controllers.LookupController
	Student  *controllers.StudentController
	Settings *controllers.SettingsController
	Routine  *controllers.RoutineController
	Session  *controllers.SessionController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authz *appauth.AuthorizationService,
	rollNumberLimiter *middleware.RateLimiter,
) {
	v1 := router.Group("/api/v1")

	// Every route needs a staff token.
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	settingsEditors := authMiddleware.RoleRequired(enums.Strings(enums.SettingsEditors)...)
	admissionEditors := authMiddleware.RoleRequired(enums.Strings(enums.AdmissionEditors)...)

	// Lookups
	authenticated.GET("/classes", ctrl.Lookup.GetClasses)
	authenticated.GET("/branches/:id/teachers", ctrl.Lookup.GetTeachers)

	classes := authenticated.Group("/classes/:id")
	classes.Use(authz.RequireClassAccess("id"))
	{
		classes.GET("/sections", ctrl.Lookup.GetSections)
		classes.GET("/subjects", ctrl.Lookup.GetSubjects)

		classes.GET("/routine", ctrl.Routine.GetRoutine)
		classes.GET("/routine/options", ctrl.Routine.GetAssignmentOptions)
		classes.GET("/routine/export", ctrl.Routine.ExportRoutine)
		classes.PUT("/routine", settingsEditors, ctrl.Routine.SaveRoutine)
	}

	// Students
	authenticated.GET("/sections/:id/roll-number", rollNumberLimiter.Middleware(), ctrl.Student.PreviewRollNumber)
	students := authenticated.Group("/students")
	{
		students.GET("/:id", ctrl.Student.GetStudent)
		students.POST("", admissionEditors, ctrl.Student.AdmitStudent)
		students.PUT("/:id/placement", admissionEditors, ctrl.Student.ReassignStudent)
	}

	// Admission forms
	sessions := authenticated.Group("/admission-sessions")
	sessions.Use(admissionEditors)
	{
		sessions.POST("", ctrl.Session.OpenSession)
		sessions.GET("/:id", ctrl.Session.GetSession)
		sessions.PUT("/:id/placement", rollNumberLimiter.Middleware(), ctrl.Session.SelectPlacement)
		sessions.PUT("/:id/roll-number", ctrl.Session.SetRollNumber)
		sessions.POST("/:id/submit", ctrl.Session.SubmitSession)
		sessions.DELETE("/:id", ctrl.Session.CloseSession)
	}

	// Settings
	settings := authenticated.Group("/settings")
	{
		settings.GET("", ctrl.Settings.GetSettings)
		settings.GET("/time-slots", ctrl.Settings.PreviewTimeSlots)
		settings.PUT("", settingsEditors, ctrl.Settings.UpdateSettings)
	}
}
