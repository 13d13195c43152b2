package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/georgebier67/myedspace-referrals/internal/config"
	"github.com/georgebier67/myedspace-referrals/internal/handler"
	"github.com/georgebier67/myedspace-referrals/internal/middleware"
	"github.com/georgebier67/myedspace-referrals/internal/notify"
	"github.com/georgebier67/myedspace-referrals/internal/repository"
	"github.com/georgebier67/myedspace-referrals/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg.Server.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	repo, err := repository.New(cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	hubspot := notify.NewHubSpotClient(cfg.HubSpot, cfg.Server.BaseURL)
	slack := notify.NewSlackClient(cfg.Slack.WebhookURL)
	dispatcher := notify.NewDispatcher(hubspot, slack, log.Named("notify"))

	campaignSvc := service.NewCampaignService(repo, log.Named("campaigns"))
	referrerSvc := service.NewReferrerService(repo, dispatcher, cfg.Server.BaseURL, log.Named("referrers"))
	referralSvc := service.NewReferralService(repo, dispatcher,
		cfg.Referral.BookingURL, cfg.Referral.AllowStatusJumps, log.Named("referrals"))

	h := handler.New(cfg, campaignSvc, referrerSvc, referralSvc, log.Named("http"))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: cfg.Server.AllowOrigins != "*",
	}))

	app.Get("/health", h.Health)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", h.Register)
	api.Get("/validate-code", h.ValidateCode)
	api.Post("/refer", h.Refer)
	api.Get("/campaigns/:slug", h.GetPublicCampaign)

	// Admin auth stays outside the guarded group
	api.Post("/admin/auth", h.AdminLogin)
	api.Get("/admin/auth", h.AdminAuthCheck)

	admin := api.Group("/admin", middleware.AdminAuth(cfg.Admin.Password))
	admin.Get("/referrals", h.ListReferrals)
	admin.Post("/update-status", h.UpdateStatus)
	admin.Post("/delete-referrer", h.DeleteReferrer)
	admin.Get("/export", h.ExportReferrals)
	admin.Get("/campaigns", h.ListCampaigns)
	admin.Post("/campaigns", h.CreateCampaign)
	admin.Get("/campaigns/:id", h.GetCampaign)
	admin.Put("/campaigns/:id", h.UpdateCampaign)
	admin.Delete("/campaigns/:id", h.DeleteCampaign)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		dispatcher.Wait()
		_ = app.Shutdown()
	}()

	log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
