package httptransport

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/order"
	"github.com/corray333/backend-labs/adminlocal/internal/service/services/authsvc"
	"github.com/corray333/backend-labs/adminlocal/internal/service/services/printsvc"
	authhandler "github.com/corray333/backend-labs/adminlocal/internal/transport/http/auth"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/dashboard"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/health"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/orders"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/printer"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/respond"
	authmw "github.com/corray333/backend-labs/adminlocal/pkg/http/middleware/auth"
	"github.com/corray333/backend-labs/adminlocal/pkg/http/middleware/localonly"
	"github.com/corray333/backend-labs/adminlocal/pkg/http/middleware/ratelimit"
	"github.com/corray333/backend-labs/adminlocal/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/adminlocal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type authService interface {
	Login(ctx context.Context, clientAddr, username, password string) (authsvc.Session, error)
	Verify(token string) (*authsvc.Claims, error)
	Authorize(token string) (*authsvc.Claims, error)
}

type orderService interface {
	ListOrders(ctx context.Context, filter order.QueryOrdersModel) (order.Page, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	UpdateStatus(ctx context.Context, id, status, notes string) (order.Order, error)
	DashboardStats(ctx context.Context) (order.Stats, error)
}

type printService interface {
	PrinterStatus(ctx context.Context) printsvc.Status
	PrintTestPage(ctx context.Context) error
	PrintAddressLabel(ctx context.Context, o order.Order) error
	PrintDeliverySlip(ctx context.Context, o order.Order) error
}

type HTTPTransport struct {
	server      *http.Server
	router      *chi.Mux
	auth        authService
	orders      orderService
	printer     printService
	environment string
	storeName   string
	now         func() time.Time
}

type option func(*HTTPTransport)

// WithEnvironment sets the environment name reported by /api/health.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEnvironment(env string) option {
	return func(h *HTTPTransport) {
		h.environment = env
	}
}

// WithStoreName sets the store name shown by the root banner.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStoreName(name string) option {
	return func(h *HTTPTransport) {
		h.storeName = name
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(h *HTTPTransport) {
		h.now = now
	}
}

func NewHTTPTransport(auth authService, orders orderService, printer printService, opts ...option) *HTTPTransport {
	router := newRouter()
	h := &HTTPTransport{
		server:      newServer(router),
		router:      router,
		auth:        auth,
		orders:      orders,
		printer:     printer,
		environment: "development",
		storeName:   "Kloset",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Handler exposes the router, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// Addr is the address the server listens on.
func (h *HTTPTransport) Addr() string {
	return h.server.Addr
}

func (h *HTTPTransport) Run() error {
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.NotFound(health.NotFound)
	h.router.MethodNotAllowed(health.NotFound)
	h.router.Get("/", h.root)

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/verify", h.verify)
			r.Post("/logout", authhandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.NewAuthMiddleware[*authsvc.Claims](h.auth))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.listOrders)
				r.Get("/{id}", h.getOrder)
				r.Patch("/{id}/status", h.updateStatus)
			})

			r.Route("/printer", func(r chi.Router) {
				// status is polled by the dashboard and must always answer
				r.Get("/status", h.printerStatus)

				r.Group(func(r chi.Router) {
					r.Use(ratelimit.NewRateLimitMiddleware(printerRate()))
					r.Post("/test", h.printTestPage)
					r.Post("/address-label/{orderId}", h.printAddressLabel)
					r.Post("/delivery-slip/{orderId}", h.printDeliverySlip)
				})
			})

			r.Get("/dashboard/stats", h.dashboardStats)
		})
	})
}

func (h *HTTPTransport) root(w http.ResponseWriter, r *http.Request) {
	health.Root(w, r, h.storeName)
}

func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	health.Health(w, r, h.environment, h.now())
}

func (h *HTTPTransport) login(w http.ResponseWriter, r *http.Request) {
	authhandler.Login(w, r, h.auth)
}

func (h *HTTPTransport) verify(w http.ResponseWriter, r *http.Request) {
	authhandler.Verify(w, r, h.auth)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	orders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	orders.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	orders.UpdateStatus(w, r, h.orders)
}

func (h *HTTPTransport) printerStatus(w http.ResponseWriter, r *http.Request) {
	printer.Status(w, r, h.printer)
}

func (h *HTTPTransport) printTestPage(w http.ResponseWriter, r *http.Request) {
	printer.TestPage(w, r, h.printer)
}

func (h *HTTPTransport) printAddressLabel(w http.ResponseWriter, r *http.Request) {
	printer.AddressLabel(w, r, h.printer, h.orders)
}

func (h *HTTPTransport) printDeliverySlip(w http.ResponseWriter, r *http.Request) {
	printer.DeliverySlip(w, r, h.printer, h.orders)
}

func (h *HTTPTransport) dashboardStats(w http.ResponseWriter, r *http.Request) {
	dashboard.Stats(w, r, h.orders)
}

func printerRate() (float64, int) {
	rps := viper.GetFloat64("printer.rate_rps")
	if rps <= 0 {
		rps = 2
	}
	burst := viper.GetInt("printer.rate_burst")
	if burst <= 0 {
		burst = 5
	}

	return rps, burst
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	// must run before anything else touches the request
	router.Use(localonly.Middleware)
	router.Use(middleware.RequestID)
	router.Use(recoverer)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	}
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{"Authorization", "Content-Type"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   viper.GetStringSlice("server.http.cors.exposed_headers"),
		AllowCredentials: true,
		MaxAge:           viper.GetInt("server.http.cors.max_age"),
	})

	router.Use(c.Handler)

	return router
}

// recoverer turns a handler panic into a JSON 500.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "Handler panicked", "panic", rec, "path", r.URL.Path)
			respond.JSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Internal Server Error",
				"message": "Something went wrong",
			})
		}()

		next.ServeHTTP(w, r)
	})
}

func newServer(router http.Handler) *http.Server {
	port := viper.GetString("server.http.port")
	if port == "" {
		port = "4000"
	}

	return &http.Server{
		Addr:              net.JoinHostPort("127.0.0.1", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
