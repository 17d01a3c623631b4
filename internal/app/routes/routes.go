package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/controllers"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/websocket"
	"github.com/yigit/visitportal/internal/web"
)

// Handlers groups everything the router needs
type Handlers struct {
	Auth         *controllers.AuthController
	Dashboard    *controllers.DashboardController
	Calendar     *controllers.CalendarController
	Availability *controllers.AvailabilityController
	Setup        *controllers.SetupController
	Admin        *controllers.AdminController
	Form         *controllers.FormController
	Export       *controllers.ExportController
	Session      *middleware.SessionMiddleware
	WebSocket    *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.StaticFS("/static", web.Static())
	SetupSwagger(router)

	// Tabs of one browser session subscribe here; identity is not resolved
	router.GET("/ws/session", h.Session.Session(), h.WebSocket.HandleConnection)

	pages := router.Group("")
	pages.Use(h.Session.Session(), h.Session.Identity())
	{
		pages.GET("/", middleware.RequireRoute(auth.PrivateRoute()), h.Dashboard.Home)

		login := pages.Group("")
		login.Use(middleware.RedirectAuthenticated("/"))
		{
			login.GET(auth.LoginPath, h.Auth.LoginPage)
			login.POST(auth.LoginPath, h.Auth.Login)
		}
		pages.POST("/logout", h.Auth.Logout)

		// Any signed-in user
		private := pages.Group("")
		private.Use(middleware.RequireRoute(auth.PrivateRoute()))
		{
			private.GET(auth.UnauthorizedPath, h.Dashboard.Unauthorized)
			private.GET(controllers.RoomSetupPath, h.Setup.RoomPage)
			private.POST(controllers.RoomSetupPath, h.Setup.Room)
			private.GET(controllers.CandidateSetupPath, h.Setup.CandidatePage)
			private.POST(controllers.CandidateSetupPath, h.Setup.Candidate)
			private.GET("/forms/:id", h.Form.Page)
			private.POST("/forms/:id", h.Form.Submit)
		}

		pages.GET(auth.DashboardPath, middleware.RequireRoute(auth.ProtectedRoute("")), h.Dashboard.Dashboard)

		candidate := pages.Group("")
		candidate.Use(middleware.RequireRoute(auth.ProtectedRoute(models.RoleCandidate)))
		{
			candidate.GET(auth.FormsPath, h.Dashboard.Forms)
			candidate.GET("/sections/:id/itinerary", h.Export.Download)
			candidate.POST("/sections/:id/itinerary/gdoc", h.Export.GoogleDoc)
			candidate.POST("/sections/:id/itinerary/email", h.Export.Email)
		}

		faculty := pages.Group("")
		faculty.Use(middleware.RequireRoute(auth.ProtectedRoute(models.RoleFaculty)))
		{
			faculty.GET("/seasons/:id", h.Dashboard.Season)
			faculty.GET("/seasons/:id/calendar", h.Calendar.Page)
			faculty.GET("/seasons/:id/calendar/slots/:slotId", h.Calendar.Slot)
			faculty.POST("/seasons/:id/calendar/slots/:slotId/confirm", h.Calendar.Confirm)
			faculty.POST("/seasons/:id/calendar/slots/:slotId/cancel", h.Calendar.Cancel)
			faculty.GET("/sections/:id/availability", h.Availability.Page)
			faculty.POST("/sections/:id/availability", h.Availability.Submit)
			faculty.POST("/availability/:id/delete", h.Availability.Delete)
		}

		admin := pages.Group("")
		admin.Use(middleware.RequireRoute(auth.AdminRoute()))
		{
			admin.GET(controllers.UsersPath, h.Admin.UsersPage)
			admin.GET("/admin/users/new", h.Auth.RegisterPage)
			admin.POST("/admin/users/new", h.Auth.Register)
			admin.POST("/admin/users/:id/role", h.Admin.UpdateRole)
			admin.POST("/admin/users/:id/delete", h.Admin.DeleteUser)
			admin.GET(controllers.SendFormLinkPath, h.Admin.SendFormLinkPage)
			admin.POST(controllers.SendFormLinkPath, h.Admin.SendFormLink)
			admin.GET(controllers.InvitePath, h.Admin.InvitePage)
			admin.POST(controllers.InvitePath, h.Admin.Invite)
			admin.GET("/admin/timeslots/new", h.Admin.TimeSlotPage)
			admin.POST("/admin/timeslots/new", h.Admin.CreateTimeSlot)
			admin.GET("/admin/s3", h.Admin.S3Page)
			admin.POST("/admin/s3", h.Admin.TestS3)
			admin.POST("/availability/:id/import", h.Availability.Import)
		}
	}

	router.NoRoute(h.Session.Session(), h.Session.Identity(), h.Dashboard.NotFound)

	// JSON endpoints used by the calendar and the availability form
	api := router.Group("")
	api.Use(h.Session.Session(), h.Session.Identity(), middleware.RequireAPI(auth.ProtectedRoute(models.RoleFaculty)))
	{
		api.GET("/api/seasons/:id/events", h.Calendar.Events)
		api.POST("/sections/:id/availability/check", h.Availability.Check)
	}
}
