package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/controllers"
	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/middleware"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/services"
)

// application holds everything the router needs.
type application struct {
	cfg           config.Config
	log           logging.Logger
	sessions      *auth.SessionManager
	users         *services.UserService
	courses       *services.CourseService
	orders        *services.OrderService
	notifications *services.NotificationService
	layouts       *services.LayoutService
	analytics     *services.AnalyticsService
	socialAuth    bool
}

func newRouter(app *application) *gin.Engine {
	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range app.cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(logging.GinLogger(app.log))
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler(app.log))

	cookies := app.cfg.Cookies
	refresh := middleware.RefreshSession(app.sessions, cookies)
	authenticated := middleware.Authenticate(app.sessions)
	admin := middleware.AuthorizeRoles(models.RoleAdmin)

	v1 := r.Group("/api/v1")

	v1.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	v1.POST("/registration", controllers.Registration(app.users))
	v1.POST("/activate-user", controllers.ActivateUser(app.users))
	v1.POST("/login", controllers.Login(app.users, cookies))
	if app.socialAuth {
		v1.POST("/social-auth", controllers.SocialAuth(app.users, cookies))
	}
	v1.GET("/logout", refresh, authenticated, controllers.Logout(app.users, cookies))
	v1.GET("/refresh", refresh, controllers.RefreshToken())

	v1.GET("/me", refresh, authenticated, controllers.Me())
	v1.PUT("/update-user-info", refresh, authenticated, controllers.UpdateUserInfo(app.users))
	v1.PUT("/update-user-password", refresh, authenticated, controllers.UpdatePassword(app.users))
	v1.PUT("/update-user-avatar", refresh, authenticated, controllers.UpdateAvatar(app.users))
	v1.GET("/get-users", refresh, authenticated, admin, controllers.GetUsers(app.users))
	v1.PUT("/update-user", refresh, authenticated, admin, controllers.UpdateUserRole(app.users))
	v1.DELETE("/delete-user/:id", refresh, authenticated, admin, controllers.DeleteUser(app.users))

	v1.GET("/get-courses", controllers.GetCourses(app.courses))
	v1.POST("/create-course", authenticated, admin, controllers.CreateCourse(app.courses))

	v1.POST("/create-order", refresh, authenticated, controllers.CreateOrder(app.orders))
	v1.GET("/get-orders", refresh, authenticated, admin, controllers.GetOrders(app.orders))
	v1.GET("/payment/stripepublishablekey", controllers.SendStripePublishableKey(app.orders))
	v1.POST("/payment", authenticated, controllers.NewPayment(app.orders))

	v1.GET("/get-all-notifications", refresh, authenticated, admin, controllers.GetNotifications(app.notifications))
	v1.PUT("/update-notifications/:id", refresh, authenticated, admin, controllers.UpdateNotification(app.notifications))

	v1.POST("/create-layout", authenticated, admin, controllers.CreateLayout(app.layouts))
	v1.PUT("/edit-layout", authenticated, admin, controllers.EditLayout(app.layouts))
	v1.GET("/get-layout/:type", controllers.GetLayout(app.layouts))

	v1.GET("/get-user-analytics", authenticated, admin, controllers.UserAnalytics(app.analytics))
	v1.GET("/get-courses-analytics", authenticated, admin, controllers.CourseAnalytics(app.analytics))
	v1.GET("/get-order-analytics", authenticated, admin, controllers.OrderAnalytics(app.analytics))

	return r
}
