// Command backfill reprocesses a fixed block range once and exits. It shares
// the indexer's stores, so every write stays idempotent against rows the
// live indexer already produced.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"fate-rewards-indexer/internal/chain"
	"fate-rewards-indexer/internal/config"
	"fate-rewards-indexer/internal/epoch"
	"fate-rewards-indexer/internal/ingestion"
	"fate-rewards-indexer/internal/ledger"
	"fate-rewards-indexer/internal/logging"
	"fate-rewards-indexer/internal/pricing"
	"fate-rewards-indexer/internal/retry"
	"fate-rewards-indexer/internal/storage/memory"
	"fate-rewards-indexer/internal/storage/migrations"
	pgstore "fate-rewards-indexer/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	from := flag.Int64("from", -1, "First block of the range (inclusive)")
	to := flag.Int64("to", -1, "Last block of the range (inclusive)")
	flag.Parse()

	if *from < 0 || *to < 0 || *to < *from {
		fmt.Fprintln(os.Stderr, "backfill: -from and -to must define a valid block range")
		os.Exit(1)
	}

	if err := run(*configPath, *from, *to); err != nil {
		fmt.Fprintf(os.Stderr, "backfill: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, from, to int64) error {
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

	client, err := chain.Dial(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return err
	}
	defer client.Close()

	runner, cleanup, err := buildRunner(ctx, cfg, client, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("backfill starting",
		zap.Int64("from", from),
		zap.Int64("to", to))

	if err := runner.SyncRange(ctx, big.NewInt(from), big.NewInt(to)); err != nil {
		return err
	}

	logger.Info("backfill complete")
	return nil
}

func buildRunner(ctx context.Context, cfg *config.Config, client *chain.Client, logger *zap.Logger) (*ingestion.Runner, func(), error) {
	retryCfg := retry.Config{
		MaxAttempts:   cfg.Retry.MaxAttempts,
		InitialDelay:  cfg.Retry.InitialDelay,
		MaxDelay:      cfg.Retry.MaxDelay,
		Multiplier:    2.0,
		JitterEnabled: true,
	}

	stables := make([]pricing.StablePool, 0, len(cfg.Pricing.Stables))
	for _, c := range cfg.Pricing.Stables {
		stables = append(stables, pricing.StablePool{
			Name:           c.Name,
			Pair:           common.HexToAddress(c.Pair),
			StableIsToken0: c.StableIsToken0,
			StableScale:    c.StableScale,
		})
	}

	oracle := pricing.NewOracle(client, common.HexToAddress(cfg.Pricing.FatePair), stables, retryCfg, logger)

	opts := ledger.Options{
		Prices: oracle,
		Logger: logger,
	}
	cleanup := func() {}

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
		cleanup = pool.Close

		opts.Transactions = pgstore.NewTransactionStore(pool)
		opts.Claims = pgstore.NewClaimStore(pool)
		opts.ByPool = pgstore.NewRewardByPoolStore(pool)
		opts.Rewards = pgstore.NewRewardStore(pool)
		opts.Metadata = pgstore.NewMetadataStore(pool)
		opts.Resolver = epoch.NewResolver(pgstore.NewStartBlockStore(pool), client)

		runner := ingestion.NewRunner(ingestion.RunnerOptions{
			Source:      client.Eth(),
			Handler:     ledger.NewHandler(opts),
			Checkpoints: pgstore.NewCheckpointStore(pool),
			Contract:    common.HexToAddress(cfg.Chain.ControllerAddress),
			BatchSize:   cfg.Chain.BatchSize,
			Logger:      logger,
		})
		return runner, cleanup, nil

	case "memory":
		logger.Warn("backfilling into in-memory storage, results are lost on exit")
		opts.Transactions = memory.NewTransactionStore()
		opts.Claims = memory.NewClaimStore()
		opts.ByPool = memory.NewRewardByPoolStore()
		opts.Rewards = memory.NewRewardStore()
		opts.Metadata = memory.NewMetadataStore()
		opts.Resolver = epoch.NewResolver(memory.NewStartBlockStore(), client)

		runner := ingestion.NewRunner(ingestion.RunnerOptions{
			Source:      client.Eth(),
			Handler:     ledger.NewHandler(opts),
			Checkpoints: memory.NewCheckpointStore(),
			Contract:    common.HexToAddress(cfg.Chain.ControllerAddress),
			BatchSize:   cfg.Chain.BatchSize,
			Logger:      logger,
		})
		return runner, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
