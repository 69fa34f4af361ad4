package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "gobackoffice/internal/api/docs" // registra o swagger.json gerado

	"gobackoffice/internal/api/product"
	"gobackoffice/internal/api/receipt"
	"gobackoffice/internal/api/returns"
	"gobackoffice/internal/api/stock"
	"gobackoffice/internal/api/user"
	"gobackoffice/internal/pkg/cache"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Product *product.Handler
	Stock   *stock.Handler
	User    *user.Handler
	Returns *returns.Handler
	Receipt *receipt.Handler
}

// RateLimit configura o limitador por IP. Client nil desliga o limite.
type RateLimit struct {
	Client      cache.Client
	MaxRequests int
	Period      time.Duration
}

// Options agrupa as dependências transversais do roteador.
type Options struct {
	Auth      middleware.Authenticator
	Logger    logger.Logger
	Gatherer  prometheus.Gatherer
	RateLimit RateLimit
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, opts Options) http.Handler {
	log := opts.Logger
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLogger(log))
	if opts.RateLimit.Client != nil {
		r.Use(middleware.RateLimiter(opts.RateLimit.Client, opts.RateLimit.MaxRequests, opts.RateLimit.Period, log))
	}

	// --- Health check, métricas e documentação ---
	r.Get("/ping", PingHandler)
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/v1", func(r chi.Router) {
		// Rotas públicas
		r.Post("/register", h.User.RegisterUserHandler)
		r.Post("/login", h.User.LoginUserHandler)

		// Rotas autenticadas: leitura liberada a qualquer usuário,
		// mutações de estoque apenas para admin/manager.
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(opts.Auth, log))
			manage := middleware.RequireManage(log)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Product.ListProductsHandler)
				r.Get("/low-stock", h.Product.LowStockHandler)
				r.Get("/{id}", h.Product.GetProductByIDHandler)
				r.With(manage).Post("/", h.Product.CreateProductHandler)
				r.With(manage).Put("/{id}", h.Product.UpdateProductHandler)
				r.With(manage).Delete("/{id}", h.Product.DeleteProductHandler)
			})

			r.With(manage).Post("/stock/adjust", h.Stock.AdjustStockHandler)

			r.Route("/returns", func(r chi.Router) {
				r.Get("/", h.Returns.ListReturnsHandler)
				r.Post("/", h.Returns.CreateReturnHandler)
				r.Get("/{id}", h.Returns.GetReturnHandler)
				r.With(manage).Post("/{id}/approve", h.Returns.ApproveReturnHandler)
				r.With(manage).Post("/{id}/reject", h.Returns.RejectReturnHandler)
				r.With(manage).Delete("/{id}", h.Returns.DeleteReturnHandler)
			})

			r.Route("/receipts", func(r chi.Router) {
				r.Get("/", h.Receipt.ListReceiptsHandler)
				r.Get("/{id}", h.Receipt.GetReceiptHandler)
				r.With(manage).Post("/", h.Receipt.ReceiveHandler)
			})
		})
	})

	return r
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
