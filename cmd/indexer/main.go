package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"fate-rewards-indexer/internal/chain"
	"fate-rewards-indexer/internal/config"
	"fate-rewards-indexer/internal/epoch"
	"fate-rewards-indexer/internal/ingestion"
	"fate-rewards-indexer/internal/ledger"
	"fate-rewards-indexer/internal/logging"
	"fate-rewards-indexer/internal/observability"
	"fate-rewards-indexer/internal/pricing"
	"fate-rewards-indexer/internal/retry"
	"fate-rewards-indexer/internal/storage"
	chstore "fate-rewards-indexer/internal/storage/clickhouse"
	"fate-rewards-indexer/internal/storage/memory"
	"fate-rewards-indexer/internal/storage/migrations"
	pgstore "fate-rewards-indexer/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "indexer: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// RPC connection
	client, err := chain.Dial(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return err
	}
	defer client.Close()

	// Storage
	stores, closeStores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	// Optional claim archive
	var archiver ledger.ClaimArchiver
	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("clickhouse migrations: %w", err)
		}
		defer conn.Close()
		archiver = chstore.NewClaimArchive(conn)
		logger.Info("claim archive enabled")
	}

	retryCfg := retry.Config{
		MaxAttempts:   cfg.Retry.MaxAttempts,
		InitialDelay:  cfg.Retry.InitialDelay,
		MaxDelay:      cfg.Retry.MaxDelay,
		Multiplier:    2.0,
		JitterEnabled: true,
	}

	oracle := pricing.NewOracle(
		client,
		common.HexToAddress(cfg.Pricing.FatePair),
		stablePools(cfg.Pricing.Stables),
		retryCfg,
		logger,
	)

	resolver := epoch.NewResolver(stores.startBlocks, client)

	handler := ledger.NewHandler(ledger.Options{
		Transactions: stores.transactions,
		Claims:       stores.claims,
		ByPool:       stores.rewardByPool,
		Rewards:      stores.rewards,
		Metadata:     stores.metadata,
		Resolver:     resolver,
		Prices:       oracle,
		Archiver:     archiver,
		Logger:       logger,
	})

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("")
		go serveMetrics(cfg.Metrics.ListenAddr, logger)
	}

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        client.Eth(),
		Handler:       handler,
		Checkpoints:   stores.checkpoints,
		Contract:      common.HexToAddress(cfg.Chain.ControllerAddress),
		DeployBlock:   big.NewInt(cfg.Chain.DeployBlock),
		Confirmations: cfg.Chain.Confirmations,
		BatchSize:     cfg.Chain.BatchSize,
		PollInterval:  cfg.Chain.PollInterval,
		Metrics:       metrics,
		Logger:        logger,
	})

	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown complete")
		return nil
	}
	return err
}

// storeSet groups the stores the ledger and runner need.
type storeSet struct {
	transactions storage.TransactionStore
	startBlocks  storage.StartBlockStore
	claims       storage.ClaimStore
	rewardByPool storage.RewardByPoolStore
	rewards      storage.RewardStore
	metadata     storage.MetadataStore
	checkpoints  storage.CheckpointStore
}

func buildStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storeSet, func(), error) {
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Info("postgres storage ready")
		return &storeSet{
			transactions: pgstore.NewTransactionStore(pool),
			startBlocks:  pgstore.NewStartBlockStore(pool),
			claims:       pgstore.NewClaimStore(pool),
			rewardByPool: pgstore.NewRewardByPoolStore(pool),
			rewards:      pgstore.NewRewardStore(pool),
			metadata:     pgstore.NewMetadataStore(pool),
			checkpoints:  pgstore.NewCheckpointStore(pool),
		}, pool.Close, nil

	case "memory":
		logger.Warn("using in-memory storage, state is lost on restart")
		return &storeSet{
			transactions: memory.NewTransactionStore(),
			startBlocks:  memory.NewStartBlockStore(),
			claims:       memory.NewClaimStore(),
			rewardByPool: memory.NewRewardByPoolStore(),
			rewards:      memory.NewRewardStore(),
			metadata:     memory.NewMetadataStore(),
			checkpoints:  memory.NewCheckpointStore(),
		}, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func stablePools(cfgs []config.StablePoolConfig) []pricing.StablePool {
	pools := make([]pricing.StablePool, 0, len(cfgs))
	for _, c := range cfgs {
		pools = append(pools, pricing.StablePool{
			Name:           c.Name,
			Pair:           common.HexToAddress(c.Pair),
			StableIsToken0: c.StableIsToken0,
			StableScale:    c.StableScale,
		})
	}
	return pools
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", zap.Error(err))
	}
}
