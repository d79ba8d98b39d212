package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/basecamplabs/basecamp/app/services/basecamp/handlers"
	"github.com/basecamplabs/basecamp/business/core/board"
	"github.com/basecamplabs/basecamp/business/core/faucet"
	"github.com/basecamplabs/basecamp/business/core/ledger"
	"github.com/basecamplabs/basecamp/business/core/progress"
	"github.com/basecamplabs/basecamp/business/core/verify"
	"github.com/basecamplabs/basecamp/foundation/chain"
	"github.com/basecamplabs/basecamp/foundation/events"
	"github.com/basecamplabs/basecamp/foundation/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("BASECAMP")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// A local .env file can provide overrides during development. A missing
	// file is not an error.
	godotenv.Load()

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:30s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		DB struct {
			DSN string `conf:"default:host=localhost user=basecamp password=basecamp dbname=basecamp sslmode=disable,mask"`
		}
		Mainnet struct {
			RPCURL        string `conf:"default:https://base.publicnode.com"`
			ChainID       int64  `conf:"default:8453"`
			TokenContract string `conf:"default:0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"`
			BadgeContract string `conf:"required"`
			Operator      string `conf:"required"`
		}
		Testnet struct {
			RPCURL        string `conf:"default:https://sepolia.base.org"`
			ChainID       int64  `conf:"default:84532"`
			TokenContract string `conf:"default:0x036CbD53842c5426634e7929541eC2318f3dCF7e"`
		}
		Faucet struct {
			KeyFile     string `conf:"default:zarf/keys/faucet.ecdsa,noprint"`
			SeedBalance int64  `conf:"default:100"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "BASECAMP"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// Payments verified against the wrong operator wallet are worse than a
	// service that refuses to start, so both mainnet addresses are checked
	// up front.
	operator, err := requireAddress("mainnet operator", cfg.Mainnet.Operator)
	if err != nil {
		return err
	}
	badgeContract, err := requireAddress("mainnet badge contract", cfg.Mainnet.BadgeContract)
	if err != nil {
		return err
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Database Support

	log.Infow("startup", "status", "initializing database support")

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Infow("shutdown", "status", "stopping database support")
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	lgr := ledger.NewCore(log, db)
	if err := lgr.Migrate(); err != nil {
		return fmt.Errorf("migrating ledger tables: %w", err)
	}

	brd := board.NewCore(log, db)
	if err := brd.Migrate(); err != nil {
		return fmt.Errorf("migrating board tables: %w", err)
	}

	if err := lgr.EnsureBot(context.Background(), cfg.Faucet.SeedBalance); err != nil {
		return fmt.Errorf("seeding bot wallet: %w", err)
	}

	// =========================================================================
	// Chain Support

	log.Infow("startup", "status", "initializing chain support")

	// The faucet account signs every testnet payout and badge mint, so the
	// private key must be available before any client is constructed.
	privateKey, err := crypto.LoadECDSA(cfg.Faucet.KeyFile)
	if err != nil {
		return fmt.Errorf("unable to load private key for faucet: %w", err)
	}

	mainnet, err := chain.New(chain.Config{
		RPCURL:        cfg.Mainnet.RPCURL,
		ChainID:       big.NewInt(cfg.Mainnet.ChainID),
		TokenContract: common.HexToAddress(cfg.Mainnet.TokenContract),
		BadgeContract: badgeContract,
		PrivateKey:    privateKey,
	})
	if err != nil {
		return fmt.Errorf("connecting to mainnet: %w", err)
	}
	defer mainnet.Close()

	testnet, err := chain.New(chain.Config{
		RPCURL:        cfg.Testnet.RPCURL,
		ChainID:       big.NewInt(cfg.Testnet.ChainID),
		TokenContract: common.HexToAddress(cfg.Testnet.TokenContract),
		PrivateKey:    privateKey,
	})
	if err != nil {
		return fmt.Errorf("connecting to testnet: %w", err)
	}
	defer testnet.Close()

	log.Infow("startup", "status", "chain support ready",
		"faucet", testnet.FaucetAddress().Hex(),
		"mainnet chainid", cfg.Mainnet.ChainID,
		"testnet chainid", cfg.Testnet.ChainID)

	// =========================================================================
	// Core Engines

	// The engines accept a function of this signature to allow the
	// application to log. These messages are also sent to any websocket
	// client that is connected into the system through the events feed.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(events.Event{Kind: "activity", Message: s})
	}

	mainnetVerify := verify.NewCore(log, verify.Profile{
		Name:             "mainnet",
		TokenContract:    mainnet.TokenContract(),
		Operator:         operator,
		RequireRecipient: false,
		EnforceMinAmount: true,
	}, mainnet)

	testnetVerify := verify.NewCore(log, verify.Profile{
		Name:             "testnet",
		TokenContract:    testnet.TokenContract(),
		RequireRecipient: true,
		EnforceMinAmount: false,
	}, testnet)

	fct := faucet.NewCore(faucet.Config{
		Log:       log,
		Ledger:    lgr,
		Sender:    testnet,
		EvHandler: ev,
	})

	prg := progress.NewCore(log, lgr, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	debugMux := handlers.DebugMux(build, log, db)
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Mainnet:  mainnetVerify,
		Testnet:  testnetVerify,
		Faucet:   fct,
		Ledger:   lgr,
		Progress: prg,
		Board:    brd,
		Minter:   mainnet,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// requireAddress parses a configured hex address and rejects the zero
// address. The conf required tag only guarantees the value is present.
func requireAddress(name string, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("config %s: %q is not a valid address", name, value)
	}

	addr := common.HexToAddress(value)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("config %s: the zero address is not allowed", name)
	}

	return addr, nil
}
