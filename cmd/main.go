package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"gobackoffice/config"
	"gobackoffice/internal/pkg/cache"
	"gobackoffice/internal/pkg/database"
	"gobackoffice/internal/pkg/docstore"
	"gobackoffice/internal/pkg/logger"
	"gobackoffice/internal/pkg/metrics"
	"gobackoffice/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"gobackoffice/internal/api/product"
	"gobackoffice/internal/api/receipt"
	"gobackoffice/internal/api/returns"
	"gobackoffice/internal/api/router"
	"gobackoffice/internal/api/stock"
	"gobackoffice/internal/api/user"
	"gobackoffice/internal/repository/productrepo"
	"gobackoffice/internal/repository/receiptrepo"
	"gobackoffice/internal/repository/returnrepo"
	"gobackoffice/internal/repository/userrepo"
	"gobackoffice/internal/service/productservice"
	"gobackoffice/internal/service/receiptservice"
	"gobackoffice/internal/service/returnservice"
	"gobackoffice/internal/service/stockservice"
	"gobackoffice/internal/service/userservice"
)

// @title GoBackoffice API
// @version 1.0
// @description Back-office da loja: catálogo, livro de estoque, devoluções e recebimentos.
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos apenas com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		stdlog.Fatalf("Configuração inválida: %v", err)
	}
	log := logger.New(logger.Options{
		Level:   cfg.App.LogLevel,
		Format:  cfg.App.LogFormat,
		Service: "gobackoffice",
	})
	log.Info("Configurações carregadas.", map[string]interface{}{
		"env":        cfg.App.Environment,
		"store":      cfg.Store.Driver,
		"batch_mode": cfg.Ledger.BatchMode,
	})

	ctx := context.Background()

	// 1. Conexões de Infraestrutura
	var rdb *redis.Client
	if cfg.NeedsRedis() {
		rdb, err = cache.Connect(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Falha ao conectar ao Redis.", err)
		}
		defer rdb.Close()
		log.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.Redis.Addr})
	}

	store, db, err := buildStore(ctx, cfg, rdb, log)
	if err != nil {
		log.Fatal("Falha ao inicializar a persistência.", err)
	}
	if db != nil {
		defer db.Close()
	}

	// 2. Métricas
	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	// 3. Repositórios
	retries := cfg.Store.MaxRetries
	productRepo := productrepo.NewProductRepository(store, retries, log)
	returnRepo := returnrepo.NewReturnRepository(store, retries, log)
	receiptRepo := receiptrepo.NewReceiptRepository(store, retries, log)
	userRepo := userrepo.NewUserRepository(store, retries, log)

	// 4. Serviços
	mode, err := stockservice.ParseBatchMode(cfg.Ledger.BatchMode)
	if err != nil {
		log.Fatal("Modo de lote inválido.", err)
	}
	ledger := stockservice.NewService(productRepo, log, mode, recorder)
	productSvc := productservice.NewService(productRepo, log, productservice.Settings{
		Currency:        cfg.Shop.Currency,
		DefaultMinStock: cfg.Shop.DefaultMinStock,
	})
	returnSvc := returnservice.NewService(productRepo, returnRepo, ledger, log, recorder)
	receiptSvc := receiptservice.NewService(receiptRepo, ledger, log, recorder)
	tokenSvc := token.NewService(cfg.JWT.SecretKey, cfg.JWT.Expiry)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	log.Debug("Serviços inicializados.", nil)

	// 5. Roteador
	routerOpts := router.Options{
		Auth:     userSvc,
		Logger:   log,
		Gatherer: prometheus.DefaultGatherer,
	}
	if cfg.RateLimit.Enabled {
		routerOpts.RateLimit = router.RateLimit{
			Client:      cache.NewRedisClient(rdb),
			MaxRequests: cfg.RateLimit.MaxRequests,
			Period:      cfg.RateLimit.Period,
		}
	}
	handler := router.NewRouter(router.Handlers{
		Product: product.NewHandler(productSvc, log),
		Stock:   stock.NewHandler(ledger, log),
		User:    user.NewHandler(userSvc, log),
		Returns: returns.NewHandler(returnSvc, log),
		Receipt: receipt.NewHandler(receiptSvc, log),
	}, routerOpts)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 6. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoBackoffice ouvindo na porta", map[string]interface{}{"port": cfg.App.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}

// buildStore escolhe o adaptador de persistência pelo STORE_DRIVER e, se
// CACHE_ENABLED, envolve-o no cache de documentos do Redis.
// Devolve também o *sql.DB quando o driver é postgres, para ser fechado no fim.
func buildStore(ctx context.Context, cfg *config.Config, rdb *redis.Client, log logger.Logger) (docstore.Store, *sql.DB, error) {
	var (
		store docstore.Store
		db    *sql.DB
		err   error
	)

	switch cfg.Store.Driver {
	case config.DriverRedis:
		store = docstore.NewRedisStore(rdb)
	case config.DriverPostgres:
		db, err = database.NewPostgresDB(cfg.Postgres.DatabaseURL, cfg.Postgres.DBTimeout)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Conexão PostgreSQL estabelecida.", nil)
		if cfg.Postgres.AutoMigrate {
			if err := database.Migrate(ctx, db, "up"); err != nil {
				db.Close()
				return nil, nil, err
			}
			log.Info("Migrações aplicadas.", nil)
		}
		store = docstore.NewPostgresStore(db, cfg.Postgres.DBTimeout)
	default:
		log.Warn("Usando armazenamento em memória: os dados são perdidos ao reiniciar.", nil)
		store = docstore.NewMemoryStore()
	}

	if cfg.Redis.CacheEnabled {
		store = docstore.NewCachedStore(store, cache.NewRedisClient(rdb), cfg.Redis.CacheTTL, log)
	}
	return store, db, nil
}
