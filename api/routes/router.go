package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/milkoapp/milko-backend/api/controllers"
	webhookcontrollers "github.com/milkoapp/milko-backend/api/controllers/webhooks"
	"github.com/milkoapp/milko-backend/api/middleware"
	authsvc "github.com/milkoapp/milko-backend/internal/auth"
	deliverysvc "github.com/milkoapp/milko-backend/internal/deliveries"
	productsvc "github.com/milkoapp/milko-backend/internal/products"
	subscriptionsvc "github.com/milkoapp/milko-backend/internal/subscriptions"
	razorpaywebhook "github.com/milkoapp/milko-backend/internal/webhooks/razorpay"
	"github.com/milkoapp/milko-backend/pkg/config"
	"github.com/milkoapp/milko-backend/pkg/db"
	"github.com/milkoapp/milko-backend/pkg/logger"
	"github.com/milkoapp/milko-backend/pkg/razorpay"
	"github.com/milkoapp/milko-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         redis.Pinger
	Gateway       razorpay.SignatureVerifier
	Auth          authsvc.Service
	Products      productsvc.Service
	Subscriptions subscriptionsvc.Service
	Deliveries    deliverysvc.Service
	Webhooks      *razorpaywebhook.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(deps.Webhooks, deps.Gateway, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))
	})

	r.Route("/api/v1/subscriptions", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/", controllers.CreateSubscription(deps.Subscriptions, logg))
		r.Get("/", controllers.ListMySubscriptions(deps.Subscriptions, logg))
		r.Get("/{subscriptionID}", controllers.GetSubscription(deps.Subscriptions, logg))
		r.Post("/{subscriptionID}/pause", controllers.PauseSubscription(deps.Subscriptions, logg))
		r.Post("/{subscriptionID}/resume", controllers.ResumeSubscription(deps.Subscriptions, logg))
		r.Post("/{subscriptionID}/cancel", controllers.CancelSubscription(deps.Subscriptions, logg))
		r.Get("/{subscriptionID}/paused-dates", controllers.ListPausedDates(deps.Subscriptions, logg))
		r.Post("/{subscriptionID}/paused-dates", controllers.AddPausedDate(deps.Subscriptions, logg))
		r.Delete("/{subscriptionID}/paused-dates", controllers.RemovePausedDate(deps.Subscriptions, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireAdmin(logg),
		)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.Products, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Patch("/{productID}", controllers.AdminUpdateProduct(deps.Products, logg))
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", controllers.AdminListSubscriptions(deps.Subscriptions, logg))
			r.Post("/{subscriptionID}/pause", controllers.AdminPauseSubscription(deps.Subscriptions, logg))
			r.Post("/{subscriptionID}/resume", controllers.AdminResumeSubscription(deps.Subscriptions, logg))
			r.Post("/{subscriptionID}/cancel", controllers.AdminCancelSubscription(deps.Subscriptions, logg))
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Get("/", controllers.AdminDaySheet(deps.Deliveries, logg))
			r.Patch("/{deliveryID}/status", controllers.AdminUpdateDeliveryStatus(deps.Deliveries, logg))
		})
	})

	return r
}
