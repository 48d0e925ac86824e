package router

import (
	"net/http"

	portfoliosvc "folio-backend/internal/application/portfolio"
	"folio-backend/internal/config"
	"folio-backend/internal/infrastructure/database"
	healthhandler "folio-backend/internal/interfaces/handlers/health"
	portfoliohandler "folio-backend/internal/interfaces/handlers/portfolio"
	"folio-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             nil,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		if errDB = database.AutoMigrate(db); errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil {
		ps := &portfoliosvc.Service{DB: db}
		ph := &portfoliohandler.Handlers{Service: ps}

		pg := app.Group("/api/v1/portfolios/:portfolioID")
		pg.Post("/purchases", ph.RecordPurchase)
		pg.Post("/sales", ph.RecordSale)
		pg.Post("/dividend-reinvestments", ph.RecordDividendReinvestment)
		pg.Post("/return-of-capital", ph.RecordReturnOfCapital)
		pg.Post("/splits", ph.RecordSplit)
		pg.Post("/cash/deposits", ph.RecordCashDeposit)
		pg.Post("/cash/withdrawals", ph.RecordCashWithdrawal)
		pg.Get("/holdings", ph.ListHoldings)
		pg.Get("/holding", ph.GetHolding)
		pg.Get("/holding/valuation", ph.GetHoldingValuation)
		pg.Get("/capital-gain-preview", ph.PreviewCapitalGain)
		pg.Get("/transactions", ph.ListTransactions)
		pg.Post("/liabilities", ph.CreateLiability)
		pg.Get("/liabilities", ph.ListLiabilities)

		txg := app.Group("/api/v1/transactions/:transactionID")
		txg.Post("/void", ph.VoidTransaction)
		txg.Post("/reverse", ph.ReverseTransaction)

		lg := app.Group("/api/v1/liabilities/:liabilityID")
		lg.Get("/", ph.GetLiability)
		lg.Post("/payments", ph.RecordLiabilityPayment)
		lg.Post("/draws", ph.IncreaseLiabilityBalance)
		lg.Post("/accrue-interest", ph.AccrueLiabilityInterest)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
