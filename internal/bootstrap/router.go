package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/access"
	"github.com/haulzy/haulzy-backend/internal/activity"
	httpapi "github.com/haulzy/haulzy-backend/internal/api/http"
	"github.com/haulzy/haulzy-backend/internal/api/http/middleware"
	authmw "github.com/haulzy/haulzy-backend/internal/auth/middleware"
	checkouthttp "github.com/haulzy/haulzy-backend/internal/checkout/http"
	checkoutsvc "github.com/haulzy/haulzy-backend/internal/checkout/service"
	dashboardhttp "github.com/haulzy/haulzy-backend/internal/dashboard/http"
	dashboardsvc "github.com/haulzy/haulzy-backend/internal/dashboard/service"
	"github.com/haulzy/haulzy-backend/internal/events"
	returnshttp "github.com/haulzy/haulzy-backend/internal/returns/http"
	returnssvc "github.com/haulzy/haulzy-backend/internal/returns/service"
	usershttp "github.com/haulzy/haulzy-backend/internal/users/http"
	userssvc "github.com/haulzy/haulzy-backend/internal/users/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Checks      map[string]httpapi.Check

	Auth      *authmw.Authenticator
	Dashboard *dashboardsvc.DashboardService
	Returns   *returnssvc.ReturnsService
	Users     *userssvc.UserService
	Checkout  *checkoutsvc.CheckoutService
	Activity  activity.Recorder
	// Bus is nil when Redis is unavailable; /events is then not mounted.
	Bus *events.Bus

	Logger *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	log := dep.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(log))
	if len(dep.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     dep.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Checks, log).RegisterRoutes(r)

	api := r.Group("/api/v1")

	public := api.Group("")
	public.Use(dep.Auth.OptionalAuth())
	access.NewHandler().Register(public)
	checkouthttp.New(dep.Checkout, log).RegisterCheckout(public.Group("/checkout"))

	signedIn := api.Group("")
	signedIn.Use(dep.Auth.RequireAuth())
	users := usershttp.New(dep.Users, log)
	users.RegisterMe(signedIn)
	checkouthttp.New(dep.Checkout, log).RegisterPurchase(signedIn.Group("/purchase"))

	admin := api.Group("")
	admin.Use(dep.Auth.RequireAdmin())
	dashboardhttp.New(dep.Dashboard, log).Register(admin.Group("/dashboard"))
	returnshttp.New(dep.Returns, log).Register(admin.Group("/returns"))
	users.Register(admin.Group("/users"))
	activity.NewHandler(dep.Activity, log).Register(admin)
	if dep.Bus != nil {
		events.NewHandler(dep.Bus).Register(admin)
	}

	return r
}
