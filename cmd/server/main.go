package main // Entry point package

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/teyorkk/iskolarblock-sub001/internal/chain"
	"github.com/teyorkk/iskolarblock-sub001/internal/config"
	"github.com/teyorkk/iskolarblock-sub001/internal/database"
	"github.com/teyorkk/iskolarblock-sub001/internal/handler"
	"github.com/teyorkk/iskolarblock-sub001/internal/queue"
	"github.com/teyorkk/iskolarblock-sub001/internal/repository"
	"github.com/teyorkk/iskolarblock-sub001/internal/router"
	"github.com/teyorkk/iskolarblock-sub001/internal/storage"
)

func main() {
	// .env is optional; in containers configuration comes from the real
	// environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the response cache and the
	// rate limiter without blocking startup.
	rdb := config.NewRedisClient()

	uploads, err := storage.NewLocalUploader(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// The attestor is optional as well.  Without a signer key the platform
	// runs normally; applications and awards simply carry no transaction
	// hash.
	chainCfg := chain.Config{
		RPCURL:      cfg.ChainRPCURL,
		ChainID:     cfg.ChainID,
		PrivateKey:  cfg.ChainPrivateKey,
		ExplorerURL: cfg.ExplorerBaseURL,
	}
	attestor, err := chain.NewAttestor(chainCfg, chain.Dialer(chainCfg))
	if err != nil {
		if !errors.Is(err, chain.ErrNoSignerKey) {
			log.Fatalf("chain: %v", err)
		}
		log.Println("chain: no signer key configured, attestation disabled")
		attestor = nil
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	apps := repository.NewApplicationRepo(db)
	certs := repository.NewCertificateRepo(db)
	periods := repository.NewPeriodRepo(db)
	awards := repository.NewAwardingRepo(db)
	records := repository.NewBlockchainRecordRepo(db)

	auth := handler.NewAuthHandler(cfg, users, tokens)
	applicant := handler.NewApplicantHandler(apps, certs, periods, records, uploads, attestor)
	admin := handler.NewAdminHandler(apps, certs, periods, awards, records, attestor)
	ledger := handler.NewLedgerHandler(records, cfg.ExplorerBaseURL)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterApplicant(e, applicant, cfg, rdb)
	router.RegisterAdmin(e, admin, ledger, cfg, rdb)

	// Serve stored documents so admins can open them from the screening UI.
	e.Static(cfg.UploadBaseURL, cfg.UploadDir)

	// Status events feed the notification log; the consumer reconnects on
	// its own and exits quietly when no broker is configured.
	go func() {
		if err := queue.StartStatusConsumer(); err != nil {
			log.Printf("queue: status consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
