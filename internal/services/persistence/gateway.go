package persistence

import (
	"context"
	"time"

	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
	"savewise/internal/metrics"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// Status is the final state of a Record call
type Status string

const (
	StatusStoredRemote   Status = "stored_remote"
	StatusQueuedFallback Status = "queued_fallback"
	StatusDropped        Status = "dropped"
)

// Outcome reports what happened to one record. Err carries the remote
// failure when the record went to the fallback path.
type Outcome struct {
	Backend string
	Status  Status
	Record  *prediction.Record
	Err     error
}

// Config tunes the gateway
type Config struct {
	RemoteTimeout time.Duration // 0 disables the bound
	QueueSize     int
}

// Gateway writes every prediction to the remote store and falls back to a
// local single-slot store when the remote write fails or is unconfirmed
type Gateway struct {
	remote   prediction.Store
	fallback prediction.Store
	writer   *fallbackWriter
	timeout  time.Duration
	log      *logger.Logger
}

// NewGateway creates a gateway and starts its fallback writer. remote may be
// nil, in which case every record takes the fallback path.
func NewGateway(remote, fallback prediction.Store, cfg Config, log *logger.Logger) *Gateway {
	log = log.Component("persistence")

	writer := newFallbackWriter(fallback, cfg.QueueSize, log)
	writer.Start()

	return &Gateway{
		remote:   remote,
		fallback: fallback,
		writer:   writer,
		timeout:  cfg.RemoteTimeout,
		log:      log,
	}
}

// Record stores the (profile, result) pair. It never fails: problems are
// logged, counted and reported in the returned Outcome.
func (g *Gateway) Record(ctx context.Context, p profile.Profile, r prediction.Result) Outcome {
	rec := prediction.NewRecord(p, r)

	var remoteErr error
	if g.remote != nil {
		stored, err := g.createRemote(ctx, rec)
		if err == nil {
			return Outcome{Backend: g.remote.Name(), Status: StatusStoredRemote, Record: stored}
		}
		remoteErr = err
	}

	name := g.fallback.Name()
	if !g.writer.Enqueue(rec) {
		err := errors.NewPersistenceError(name, "enqueue", errors.ErrQueueFull)
		metrics.PersistenceWrites.WithLabelValues(name, "dropped").Inc()
		g.log.Errorw("Prediction dropped", err, "depth", g.writer.Depth())
		if remoteErr != nil {
			err = errors.NewPersistenceError(name, "enqueue", errors.Join(remoteErr, errors.ErrQueueFull))
		}
		return Outcome{Backend: name, Status: StatusDropped, Record: rec, Err: err}
	}

	metrics.PersistenceWrites.WithLabelValues(name, "queued").Inc()
	return Outcome{Backend: name, Status: StatusQueuedFallback, Record: rec, Err: remoteErr}
}

func (g *Gateway) createRemote(ctx context.Context, rec *prediction.Record) (*prediction.Record, error) {
	name := g.remote.Name()

	// The write outlives a disconnected client but not the configured bound
	ctx = context.WithoutCancel(ctx)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	stored, err := g.remote.Create(ctx, rec)
	metrics.RecordPersistence(name, "create", time.Since(start))

	switch {
	case err != nil:
		metrics.PersistenceWrites.WithLabelValues(name, "failed").Inc()
		perr := errors.NewPersistenceError(name, "create", err)
		g.log.Errorw("Remote write failed, using fallback", perr)
		return nil, perr
	case stored == nil:
		metrics.PersistenceWrites.WithLabelValues(name, "unconfirmed").Inc()
		perr := errors.NewPersistenceError(name, "create", errors.ErrNoConfirmation)
		g.log.Errorw("Remote write unconfirmed, using fallback", perr)
		return nil, perr
	}

	metrics.PersistenceWrites.WithLabelValues(name, "stored").Inc()
	return stored, nil
}

// ReadAll returns the history newest first. The remote store is tried first;
// on failure or an empty result the fallback record is returned. Total
// failure yields an empty history.
func (g *Gateway) ReadAll(ctx context.Context) prediction.History {
	h := g.readAll(ctx)
	metrics.HistoryReads.WithLabelValues(string(h.Source)).Inc()
	return h
}

func (g *Gateway) readAll(ctx context.Context) prediction.History {
	if g.remote != nil {
		records, err := g.listRemote(ctx)
		if err != nil {
			g.log.Errorw("Remote read failed, reading fallback", errors.NewPersistenceError(g.remote.Name(), "list", err))
		} else if len(records) > 0 {
			return prediction.History{Records: records, Source: prediction.SourceRemote}
		}
	}

	start := time.Now()
	records, err := g.fallback.List(ctx)
	metrics.RecordPersistence(g.fallback.Name(), "list", time.Since(start))
	if err != nil {
		g.log.Errorw("Fallback read failed", errors.NewPersistenceError(g.fallback.Name(), "list", err))
		return prediction.History{Source: prediction.SourceNone}
	}
	if len(records) == 0 {
		return prediction.History{Source: prediction.SourceNone}
	}

	return prediction.History{Records: records, Source: prediction.SourceFallback}
}

func (g *Gateway) listRemote(ctx context.Context) ([]prediction.Record, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		metrics.RecordPersistence(g.remote.Name(), "list", time.Since(start))
	}()
	return g.remote.List(ctx)
}

// ReadLatest returns the newest record, if any
func (g *Gateway) ReadLatest(ctx context.Context) (*prediction.Record, bool) {
	return g.ReadAll(ctx).Latest()
}

// Flush waits for queued fallback writes issued before the call
func (g *Gateway) Flush(ctx context.Context) error {
	return g.writer.Flush(ctx)
}

// Close stops accepting fallback writes and drains the queue
func (g *Gateway) Close(ctx context.Context) error {
	return g.writer.Stop(ctx)
}

// RemoteName names the remote backend, or "" when none is configured
func (g *Gateway) RemoteName() string {
	if g.remote == nil {
		return ""
	}
	return g.remote.Name()
}

// Depth returns the number of pending fallback writes
func (g *Gateway) Depth() int {
	return g.writer.Depth()
}

// Capacity returns the fallback queue bound
func (g *Gateway) Capacity() int {
	return g.writer.Capacity()
}
