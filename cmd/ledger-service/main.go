package main

import (
	"fmt"
	"os"

	"github.com/nurpe/contracts-ledger/internal/auth"
	"github.com/nurpe/contracts-ledger/internal/config"
	"github.com/nurpe/contracts-ledger/internal/db"
	"github.com/nurpe/contracts-ledger/internal/excel"
	httphandler "github.com/nurpe/contracts-ledger/internal/http"
	"github.com/nurpe/contracts-ledger/internal/http/middleware"
	"github.com/nurpe/contracts-ledger/internal/logger"
	"github.com/nurpe/contracts-ledger/internal/pdf"
	"github.com/nurpe/contracts-ledger/internal/repository"
	"github.com/nurpe/contracts-ledger/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	sqlDB, err := database.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql db")
	}
	defer sqlDB.Close()

	ledgerRepo := repository.NewLedgerRepository(database)

	contractService := service.NewContractService(ledgerRepo, pdf.NewGenerator())
	transferService := service.NewTransferService(ledgerRepo, cfg, log)
	reportService := service.NewReportService(ledgerRepo, excel.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.TokenSecret)
	if !tokenParser.Enabled() {
		log.Warn().Msg("AUTH_TOKEN_SECRET is empty, trusting profile_id header")
	}

	handler := httphandler.NewHandler(contractService, transferService, reportService, sqlDB, log)
	profileMiddleware := middleware.Profile(ledgerRepo, tokenParser, log)
	router := httphandler.NewRouter(handler, profileMiddleware, cfg, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting ledger service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
