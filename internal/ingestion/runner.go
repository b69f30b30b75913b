package ingestion

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/observability"
	"fate-rewards-indexer/internal/storage"
)

// LogSource is the subset of the RPC client the runner needs.
// *ethclient.Client satisfies it.
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// EventHandler applies parsed controller events. Implemented by the ledger.
type EventHandler interface {
	HandleDeposit(ctx context.Context, ev *domain.DepositEvent) error
	HandleClaim(ctx context.Context, ev *domain.ClaimRewardsEvent) error
}

// Runner polls the chain for controller logs and feeds them to the handler
// strictly one at a time, in (block, txIndex, logIndex) order. Any handler
// error stops the runner: a partially applied event must halt the pipeline
// rather than corrupt the increment-only aggregates.
type Runner struct {
	source      LogSource
	handler     EventHandler
	checkpoints storage.CheckpointStore

	contract      common.Address
	deployBlock   *big.Int
	confirmations uint64
	batchSize     uint64
	pollInterval  time.Duration

	metrics *observability.Metrics
	logger  *zap.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source      LogSource
	Handler     EventHandler
	Checkpoints storage.CheckpointStore

	Contract      common.Address
	DeployBlock   *big.Int // first block worth scanning (controller deployment)
	Confirmations uint64   // blocks to lag behind the head
	BatchSize     uint64   // max blocks per FilterLogs call
	PollInterval  time.Duration

	Metrics *observability.Metrics // may be nil
	Logger  *zap.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = 2000
	}

	pollInterval := opts.PollInterval
	if pollInterval == 0 {
		pollInterval = 10 * time.Second
	}

	deployBlock := opts.DeployBlock
	if deployBlock == nil {
		deployBlock = big.NewInt(0)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		source:        opts.Source,
		handler:       opts.Handler,
		checkpoints:   opts.Checkpoints,
		contract:      opts.Contract,
		deployBlock:   deployBlock,
		confirmations: opts.Confirmations,
		batchSize:     batchSize,
		pollInterval:  pollInterval,
		metrics:       opts.Metrics,
		logger:        logger,
	}
}

// Run polls until the context is cancelled or an event fails to apply.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.logger.Info("ingestion runner started",
		zap.String("contract", domain.AddressID(r.contract)),
		zap.Uint64("confirmations", r.confirmations),
		zap.Duration("poll_interval", r.pollInterval))

	for {
		if err := r.syncOnce(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// syncOnce advances from the checkpoint to the confirmed head, one batch.
func (r *Runner) syncOnce(ctx context.Context) error {
	from, err := r.nextBlock(ctx)
	if err != nil {
		return err
	}

	head, err := r.source.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("fetch head block: %w", err)
	}
	if head < r.confirmations {
		return nil
	}
	confirmed := head - r.confirmations

	if from.Cmp(new(big.Int).SetUint64(confirmed)) > 0 {
		return nil
	}

	to := new(big.Int).Add(from, new(big.Int).SetUint64(r.batchSize-1))
	if to.Cmp(new(big.Int).SetUint64(confirmed)) > 0 {
		to = new(big.Int).SetUint64(confirmed)
	}

	return r.SyncRange(ctx, from, to)
}

// nextBlock returns the first block that still needs processing.
func (r *Runner) nextBlock(ctx context.Context) (*big.Int, error) {
	last, err := r.checkpoints.Get(ctx, domain.AddressID(r.contract))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return new(big.Int).Set(r.deployBlock), nil
		}
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return new(big.Int).Add(last, domain.OneBI), nil
}

// SyncRange processes all controller logs in [from, to] and persists the
// checkpoint once the whole range has been applied.
func (r *Runner) SyncRange(ctx context.Context, from, to *big.Int) error {
	query := ethereum.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Addresses: []common.Address{r.contract},
		Topics:    [][]common.Hash{{DepositTopic, ClaimRewardsTopic}},
	}

	logs, err := r.source.FilterLogs(ctx, query)
	if err != nil {
		return fmt.Errorf("filter logs [%s, %s]: %w", from, to, err)
	}

	SortLogs(logs)

	timestamps := make(map[uint64]int64)
	for _, log := range logs {
		if log.Removed {
			continue
		}
		if err := r.dispatch(ctx, log, timestamps); err != nil {
			return err
		}
	}

	if err := r.advanceCheckpoint(ctx, to); err != nil {
		return err
	}

	if r.metrics != nil {
		span := new(big.Int).Sub(to, from)
		r.metrics.BlocksProcessed.Add(float64(span.Int64() + 1))
		r.metrics.LastBlock.Set(float64(to.Int64()))
	}

	r.logger.Info("range processed",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int("logs", len(logs)))

	return nil
}

// advanceCheckpoint persists the checkpoint, never moving it backwards.
// Backfills over already-covered ranges must not make the live indexer
// rescan blocks it has finished.
func (r *Runner) advanceCheckpoint(ctx context.Context, to *big.Int) error {
	current, err := r.checkpoints.Get(ctx, domain.AddressID(r.contract))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if current != nil && current.Cmp(to) >= 0 {
		return nil
	}

	if err := r.checkpoints.Put(ctx, domain.AddressID(r.contract), to); err != nil {
		return fmt.Errorf("persist checkpoint %s: %w", to, err)
	}
	return nil
}

// dispatch parses one log and applies it to the ledger.
func (r *Runner) dispatch(ctx context.Context, log types.Log, timestamps map[uint64]int64) error {
	if len(log.Topics) == 0 {
		return fmt.Errorf("log %s-%d has no topics: %w", log.TxHash.Hex(), log.Index, ErrInvalidLogFormat)
	}

	ts, err := r.blockTimestamp(ctx, log.BlockNumber, timestamps)
	if err != nil {
		return err
	}

	switch log.Topics[0] {
	case DepositTopic:
		ev, err := ParseDeposit(log)
		if err != nil {
			r.countError("deposit")
			return fmt.Errorf("parse deposit %s-%d: %w", log.TxHash.Hex(), log.Index, err)
		}
		ev.Timestamp = ts

		start := time.Now()
		if err := r.handler.HandleDeposit(ctx, ev); err != nil {
			r.countError("deposit")
			return err
		}
		r.observe("deposit", start)

	case ClaimRewardsTopic:
		ev, err := ParseClaimRewards(log)
		if err != nil {
			r.countError("claim")
			return fmt.Errorf("parse claim %s-%d: %w", log.TxHash.Hex(), log.Index, err)
		}
		ev.Timestamp = ts

		start := time.Now()
		if err := r.handler.HandleClaim(ctx, ev); err != nil {
			r.countError("claim")
			return err
		}
		r.observe("claim", start)

	default:
		// The topic filter should make this unreachable.
		r.logger.Warn("unexpected log topic",
			zap.String("topic", log.Topics[0].Hex()),
			zap.String("tx", log.TxHash.Hex()))
	}

	return nil
}

// blockTimestamp resolves a block's timestamp, caching per sync range.
func (r *Runner) blockTimestamp(ctx context.Context, block uint64, cache map[uint64]int64) (int64, error) {
	if ts, ok := cache[block]; ok {
		return ts, nil
	}

	header, err := r.source.HeaderByNumber(ctx, new(big.Int).SetUint64(block))
	if err != nil {
		return 0, fmt.Errorf("fetch header %d: %w", block, err)
	}

	ts := int64(header.Time)
	cache[block] = ts
	return ts, nil
}

func (r *Runner) countError(eventType string) {
	if r.metrics != nil {
		r.metrics.ProcessingErrors.WithLabelValues(eventType).Inc()
	}
}

func (r *Runner) observe(eventType string, start time.Time) {
	if r.metrics != nil {
		r.metrics.EventsProcessed.WithLabelValues(eventType).Inc()
		r.metrics.EventProcessingLatency.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}
}
