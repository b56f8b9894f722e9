package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/observability"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/service"
	"github.com/q8244654-ui/lifeclock/internal/lifeclock/store"
	"github.com/q8244654-ui/lifeclock/pkg/httpx"
	"github.com/q8244654-ui/lifeclock/pkg/paywall"
	"github.com/q8244654-ui/lifeclock/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cookieSecret  []byte
	secureCookies bool
	baseURL       string
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	metrics       *observability.Metrics
	store         store.Store

	CheckoutService *service.CheckoutService
	PaymentService  *service.PaymentService
	LibraryService  *service.LibraryService
	ReportService   *service.ReportService
	StatsService    *service.StatsService

	// AdminPasswordHash is the bcrypt hash guarding the admin endpoints.
	// Empty means the admin surface is not configured and fails closed.
	AdminPasswordHash string
}

func NewRouter(
	cookieSecret []byte,
	secureCookies bool,
	baseURL, buildVersion string,
	st store.Store,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		cookieSecret:  cookieSecret,
		secureCookies: secureCookies,
		baseURL:       baseURL,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		metrics:       metrics,
		store:         st,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerCheckout()
	r.registerPayment()
	r.registerLibrary()
	r.registerReport()
	r.registerStats()
	r.registerAdmin()
	r.registerSEO()
	r.registerSystem()

	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}

// gate is the access-token guard for gated routes. Denials feed the metrics
// counter before the denial response is written.
func (r *Router) gate() httpx.Middleware {
	deny := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.metrics.GatedDenials.Inc()
		paywall.DenyJSON(w, req)
	})
	return paywall.Middleware(r.cookieSecret, r.secureCookies, deny)
}

// rateLimit builds a limiter middleware that feeds the rejection counter.
func (r *Router) rateLimit(cfg httpx.RateLimitConfig, extractor httpx.KeyExtractor) httpx.Middleware {
	return httpx.RateLimitWithLimiter(
		httpx.NewLimiter(cfg), cfg, extractor,
		func(string) { r.metrics.RateLimitRejections.Inc() },
	)
}

func (r *Router) registerCheckout() {
	h := &CheckoutHandler{
		CheckoutService: r.CheckoutService,
		Metrics:         r.metrics,
	}

	// Session creation is billed by the provider, so it gets the tight
	// per-IP bucket: burst of 10, one request every 2s sustained.
	r.Mux.Handle("POST /api/checkout/session",
		httpx.Chain(h,
			r.rateLimit(httpx.CheckoutLimit,
				httpx.PrefixedKeyExtractor("checkout:", httpx.IPKeyExtractor)),
		),
	)
}

func (r *Router) registerPayment() {
	h := &ConfirmHandler{
		PaymentService: r.PaymentService,
		SecureCookies:  r.secureCookies,
		Metrics:        r.metrics,
	}

	r.Mux.Handle("POST /api/payment/confirm",
		httpx.Chain(h,
			r.rateLimit(httpx.ConfirmLimit,
				httpx.PrefixedKeyExtractor("confirm:", httpx.IPKeyExtractor)),
		),
	)
}

func (r *Router) registerLibrary() {
	books := &LibraryHandler{
		Read: r.LibraryService.ReadBook,
	}
	docs := &LibraryHandler{
		Read: r.LibraryService.ReadDoc,
	}
	download := &BonusDownloadHandler{
		LibraryService: r.LibraryService,
	}

	// The books shelf is public.
	r.Mux.Handle("GET /books/{filename}",
		httpx.Chain(books,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// The docs shelf and the bonus download are only for paying customers.
	r.Mux.Handle("GET /docs/{filename}",
		httpx.Chain(docs,
			r.gate(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /api/pdf/download",
		httpx.Chain(download,
			r.gate(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerReport() {
	h := &ReportHandler{ReportService: r.ReportService}

	r.Mux.Handle("POST /api/pdf/generate",
		httpx.Chain(h,
			r.gate(),
			r.rateLimit(httpx.ConfirmLimit,
				httpx.PrefixedKeyExtractor("report:", httpx.IPKeyExtractor)),
		),
	)
}

func (r *Router) registerStats() {
	h := &StatsHandler{StatsService: r.StatsService}

	r.Mux.Handle("GET /api/stats",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminStatsHandler{StatsService: r.StatsService}

	r.Mux.Handle("GET /v1/admin/stats",
		httpx.Chain(h,
			AdminAuthMiddleware(r.AdminPasswordHash),
			httpx.RateLimitByIP(httpx.ConfirmLimit),
		),
	)
}

func (r *Router) registerSEO() {
	r.Mux.Handle("GET /robots.txt", RobotsHandler(r.baseURL))
	r.Mux.Handle("GET /sitemap.xml", SitemapHandler(r.baseURL))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
