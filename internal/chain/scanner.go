// Package chain implements the event-log fallback source: a chunked
// block-range scanner over an EVM JSON-RPC endpoint. Chunk failures are
// logged and skipped (a partial event set beats a total failure) and
// accumulation stops at a configurable event cap.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/agentmesh/backend/internal/config"
	"github.com/agentmesh/backend/pkg/model"
)

// LogSource is the slice of the RPC client the scanner needs.
// *ethclient.Client satisfies it.
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Progress is a snapshot of scanner counters, safe to read while a scan
// is in flight.
type Progress struct {
	ChunksScanned int64 `json:"chunksScanned"`
	ChunksFailed  int64 `json:"chunksFailed"`
	EventsSeen    int64 `json:"eventsSeen"`
}

// Scanner walks a block range in bounded chunks and decodes registry
// events. Ordering follows block order within and across chunks; the
// scanner never introduces duplicates. Revocation composition is the
// caller's job.
type Scanner struct {
	src      LogSource
	contract common.Address
	abi      abi.ABI
	bound    *bind.BoundContract
	cfg      config.ScannerConfig
	log      *slog.Logger

	chunksScanned atomic.Int64
	chunksFailed  atomic.Int64
	eventsSeen    atomic.Int64
}

// NewScanner creates a scanner for the registry contract at the given
// address. Zero config fields fall back to the documented defaults.
func NewScanner(src LogSource, contract common.Address, cfg config.ScannerConfig) (*Scanner, error) {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 10000
	}
	if cfg.MaxBlockRange == 0 {
		cfg.MaxBlockRange = 9999
	}
	if cfg.TailBlocks == 0 {
		cfg.TailBlocks = 50000
	}

	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}

	return &Scanner{
		src:      src,
		contract: contract,
		abi:      parsed,
		bound:    bind.NewBoundContract(contract, parsed, nil, nil, nil),
		cfg:      cfg,
		log:      slog.Default().With("component", "scanner"),
	}, nil
}

// Progress returns the current counters.
func (s *Scanner) Progress() Progress {
	return Progress{
		ChunksScanned: s.chunksScanned.Load(),
		ChunksFailed:  s.chunksFailed.Load(),
		EventsSeen:    s.eventsSeen.Load(),
	}
}

// BlockTime returns the timestamp of a block. Used by fallback paths
// that need real timestamps instead of lumping events into "now".
func (s *Scanner) BlockTime(ctx context.Context, block uint64) (int64, error) {
	header, err := s.src.HeaderByNumber(ctx, new(big.Int).SetUint64(block))
	if err != nil {
		return 0, fmt.Errorf("%w: header %d: %v", model.ErrTransport, block, err)
	}
	return int64(header.Time), nil
}

// scan collects raw logs for one event across the configured range.
// Cancellation is observed at chunk boundaries; whatever accumulated is
// returned (the partial-success contract of the fallback path).
func (s *Scanner) scan(ctx context.Context, eventName string) ([]types.Log, error) {
	event, ok := s.abi.Events[eventName]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", eventName)
	}

	head, err := s.src.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: head block: %v", model.ErrTransport, err)
	}

	var start uint64
	if s.cfg.FromBlock >= 0 {
		start = uint64(s.cfg.FromBlock)
	} else if head > s.cfg.TailBlocks {
		start = head - s.cfg.TailBlocks
	}

	var logs []types.Log
	for from := start; from <= head; {
		select {
		case <-ctx.Done():
			s.log.Info("scan cancelled", "event", eventName, "accumulated", len(logs))
			return logs, nil
		default:
		}

		to := from + s.cfg.MaxBlockRange
		if to > head {
			to = head
		}

		chunk, err := s.src.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(to),
			Addresses: []common.Address{s.contract},
			Topics:    [][]common.Hash{{event.ID}},
		})
		if err != nil {
			// Partial data beats total failure: skip the chunk.
			s.chunksFailed.Add(1)
			scannerMetrics.chunks.WithLabelValues(eventName, "failed").Inc()
			s.log.Warn("chunk failed, skipping", "event", eventName, "from", from, "to", to, "err", err)
			from = to + 1
			continue
		}
		s.chunksScanned.Add(1)
		scannerMetrics.chunks.WithLabelValues(eventName, "ok").Inc()

		for _, lg := range chunk {
			if lg.Removed {
				continue
			}
			logs = append(logs, lg)
		}
		s.eventsSeen.Store(int64(len(logs)))

		if len(logs) >= s.cfg.MaxEvents {
			logs = logs[:s.cfg.MaxEvents]
			s.log.Info("event cap reached", "event", eventName, "cap", s.cfg.MaxEvents)
			break
		}
		from = to + 1
	}
	return logs, nil
}

// ContentPublished scans and decodes ContentPublished events.
func (s *Scanner) ContentPublished(ctx context.Context) ([]ContentPublishedEvent, error) {
	logs, err := s.scan(ctx, "ContentPublished")
	if err != nil {
		return nil, err
	}
	out := make([]ContentPublishedEvent, 0, len(logs))
	for _, lg := range logs {
		var ev ContentPublishedEvent
		if err := s.bound.UnpackLog(&ev, "ContentPublished", lg); err != nil {
			s.log.Warn("undecodable log skipped", "event", "ContentPublished", "block", lg.BlockNumber, "err", err)
			continue
		}
		ev.BlockNumber = lg.BlockNumber
		out = append(out, ev)
	}
	return out, nil
}

// AttestationsCreated scans and decodes AttestationCreated events.
func (s *Scanner) AttestationsCreated(ctx context.Context) ([]AttestationCreatedEvent, error) {
	logs, err := s.scan(ctx, "AttestationCreated")
	if err != nil {
		return nil, err
	}
	out := make([]AttestationCreatedEvent, 0, len(logs))
	for _, lg := range logs {
		var ev AttestationCreatedEvent
		if err := s.bound.UnpackLog(&ev, "AttestationCreated", lg); err != nil {
			s.log.Warn("undecodable log skipped", "event", "AttestationCreated", "block", lg.BlockNumber, "err", err)
			continue
		}
		ev.BlockNumber = lg.BlockNumber
		out = append(out, ev)
	}
	return out, nil
}

// AttestationsRevoked scans and decodes AttestationRevoked events.
func (s *Scanner) AttestationsRevoked(ctx context.Context) ([]AttestationRevokedEvent, error) {
	logs, err := s.scan(ctx, "AttestationRevoked")
	if err != nil {
		return nil, err
	}
	out := make([]AttestationRevokedEvent, 0, len(logs))
	for _, lg := range logs {
		var ev AttestationRevokedEvent
		if err := s.bound.UnpackLog(&ev, "AttestationRevoked", lg); err != nil {
			s.log.Warn("undecodable log skipped", "event", "AttestationRevoked", "block", lg.BlockNumber, "err", err)
			continue
		}
		ev.BlockNumber = lg.BlockNumber
		out = append(out, ev)
	}
	return out, nil
}

// VotesCast scans and decodes VoteCast events.
func (s *Scanner) VotesCast(ctx context.Context) ([]VoteCastEvent, error) {
	logs, err := s.scan(ctx, "VoteCast")
	if err != nil {
		return nil, err
	}
	out := make([]VoteCastEvent, 0, len(logs))
	for _, lg := range logs {
		var ev VoteCastEvent
		if err := s.bound.UnpackLog(&ev, "VoteCast", lg); err != nil {
			s.log.Warn("undecodable log skipped", "event", "VoteCast", "block", lg.BlockNumber, "err", err)
			continue
		}
		ev.BlockNumber = lg.BlockNumber
		out = append(out, ev)
	}
	return out, nil
}

// Follows scans and decodes Followed events.
func (s *Scanner) Follows(ctx context.Context) ([]FollowedEvent, error) {
	logs, err := s.scan(ctx, "Followed")
	if err != nil {
		return nil, err
	}
	out := make([]FollowedEvent, 0, len(logs))
	for _, lg := range logs {
		var ev FollowedEvent
		if err := s.bound.UnpackLog(&ev, "Followed", lg); err != nil {
			s.log.Warn("undecodable log skipped", "event", "Followed", "block", lg.BlockNumber, "err", err)
			continue
		}
		ev.BlockNumber = lg.BlockNumber
		out = append(out, ev)
	}
	return out, nil
}

// Registrations scans and decodes Registered events.
func (s *Scanner) Registrations(ctx context.Context) ([]RegisteredEvent, error) {
	logs, err := s.scan(ctx, "Registered")
	if err != nil {
		return nil, err
	}
	out := make([]RegisteredEvent, 0, len(logs))
	for _, lg := range logs {
		var ev RegisteredEvent
		if err := s.bound.UnpackLog(&ev, "Registered", lg); err != nil {
			s.log.Warn("undecodable log skipped", "event", "Registered", "block", lg.BlockNumber, "err", err)
			continue
		}
		ev.BlockNumber = lg.BlockNumber
		out = append(out, ev)
	}
	return out, nil
}
