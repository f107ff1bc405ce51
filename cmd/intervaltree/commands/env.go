package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"

	"github.com/Sumatoshi-tech/intervaltree/pkg/collection"
	"github.com/Sumatoshi-tech/intervaltree/pkg/config"
	"github.com/Sumatoshi-tech/intervaltree/pkg/intervaltree"
	"github.com/Sumatoshi-tech/intervaltree/pkg/numeric"
	"github.com/Sumatoshi-tech/intervaltree/pkg/observability"
	"github.com/Sumatoshi-tech/intervaltree/pkg/persist"
	"github.com/Sumatoshi-tech/intervaltree/pkg/persist/boltstore"
	"github.com/Sumatoshi-tech/intervaltree/pkg/persist/redisstore"
	"github.com/Sumatoshi-tech/intervaltree/pkg/version"
)

// env is the per-invocation runtime: configuration, telemetry and the
// collection store.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	providers observability.Providers
	ops       *observability.OperationMetrics

	store  collection.Persistor
	closer io.Closer
}

func (g *Globals) open(cmd *cobra.Command) (*env, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceName = cfg.Telemetry.ServiceName
	obsCfg.ServiceVersion = version.Version
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = g.LogJSON || cfg.Logging.Format == "json"
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.Prometheus = cfg.Telemetry.Prometheus

	switch {
	case g.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case g.Quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	providers, err := observability.InitWithWriter(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	e := &env{cfg: cfg, logger: providers.Logger, providers: providers}

	e.ops, err = observability.NewOperationMetrics(providers.Meter)
	if err != nil {
		return nil, errors.Join(err, providers.Shutdown(cmd.Context()))
	}

	if err := e.openStore(cmd.Context()); err != nil {
		return nil, errors.Join(err, providers.Shutdown(cmd.Context()))
	}

	return e, nil
}

// openStore connects the configured backend and wraps it with metrics.
func (e *env) openStore(ctx context.Context) error {
	sc := e.cfg.Store

	var (
		store collection.Persistor
		err   error
	)

	switch sc.Backend {
	case config.BackendNone:
		return nil
	case config.BackendFile:
		var codec persist.Codec

		codec, err = persist.CodecByName(sc.Codec)
		if err != nil {
			return err
		}

		store, err = persist.NewFileStore(sc.Path, codec, persist.WithLogger(e.logger))
	case config.BackendBolt:
		var db *boltstore.Store

		db, err = boltstore.Open(sc.Path, boltstore.WithTimeout(sc.Timeout), boltstore.WithLogger(e.logger))
		if err == nil {
			store, e.closer = db, db
		}
	case config.BackendRedis:
		opts := []redisstore.Option{redisstore.WithTimeout(sc.Timeout), redisstore.WithLogger(e.logger)}
		if sc.RedisPrefix != "" {
			opts = append(opts, redisstore.WithPrefix(sc.RedisPrefix))
		}

		var rs *redisstore.Store

		rs, err = redisstore.Dial(ctx, sc.RedisAddr, opts...)
		if err == nil {
			store, e.closer = rs, rs
		}
	default:
		return fmt.Errorf("%w: %q", config.ErrInvalidBackend, sc.Backend)
	}

	if err != nil {
		return fmt.Errorf("open %s store: %w", sc.Backend, err)
	}

	metrics, err := observability.NewStoreMetrics(e.providers.Meter)
	if err != nil {
		return errors.Join(err, e.closeStore())
	}

	e.store = observability.Instrument(store, sc.Backend, metrics)

	e.logger.Debug("store opened", "backend", sc.Backend)

	return nil
}

func (e *env) closeStore() error {
	if e.closer == nil {
		return nil
	}

	return e.closer.Close()
}

// Close releases the store and flushes telemetry.
func (e *env) Close(ctx context.Context) error {
	return errors.Join(e.closeStore(), e.providers.Shutdown(ctx))
}

func (e *env) persistOptions() []collection.PersistentOption {
	return []collection.PersistentOption{
		collection.WithCacheEntries(e.cfg.Store.CacheEntries),
		collection.WithWeakReferences(e.cfg.Store.WeakReferences),
		collection.WithLogger(e.logger),
	}
}

// builder returns a tree builder for kindName ("mixed" or a numeric kind)
// following the tree and store configuration.
func (e *env) builder(kindName string) (*intervaltree.Builder, error) {
	tc := e.cfg.Tree
	tc.Kind = kindName

	kind, err := tc.NumericKind()
	if err != nil {
		return nil, err
	}

	collKind, err := collection.ParseKind(tc.Collection)
	if err != nil {
		return nil, err
	}

	b := intervaltree.NewBuilder()
	if kind == numeric.Invalid {
		b.UseMixedNumbers()
	} else {
		b.UsePredefinedType(kind)
	}

	b.CollectionKind(collKind).
		AutoBalancing(tc.AutoBalancing).
		WriteCollections(tc.WriteCollections)

	if e.store != nil {
		b.Persistor(e.store, e.persistOptions()...)
	}

	return b, nil
}

// loadSnapshot reads a snapshot. A configured store replaces the factory
// recorded in the snapshot.
func (e *env) loadSnapshot(ctx context.Context, path string) (*intervaltree.Tree, error) {
	var tree *intervaltree.Tree

	err := e.observe(ctx, "load", func(context.Context) (int, error) {
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()

		b := intervaltree.NewBuilder()

		if e.store != nil {
			collKind, err := collection.ParseKind(e.cfg.Tree.Collection)
			if err != nil {
				return 0, err
			}

			b.CollectionKind(collKind).Persistor(e.store, e.persistOptions()...)
		}

		tree, err = b.Load(f)
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", filepath.Base(path), err)
		}

		return tree.Size(), nil
	})

	return tree, err
}

// saveSnapshot writes tree to path and returns the file size.
func (e *env) saveSnapshot(ctx context.Context, tree *intervaltree.Tree, path string, compress bool) (int64, error) {
	var size int64

	err := e.observe(ctx, "save", func(context.Context) (int, error) {
		f, err := os.Create(path)
		if err != nil {
			return 0, err
		}

		saveErr := tree.Save(f, intervaltree.WithCompression(compress))
		if closeErr := f.Close(); saveErr == nil {
			saveErr = closeErr
		}

		if saveErr != nil {
			return 0, fmt.Errorf("save %s: %w", filepath.Base(path), saveErr)
		}

		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}

		size = info.Size()

		return tree.Size(), nil
	})

	return size, err
}

// observe runs fn inside a span and records it as operation op. fn returns
// the number of intervals it produced, or -1 when that does not apply.
func (e *env) observe(ctx context.Context, op string, fn func(ctx context.Context) (int, error)) error {
	ctx, span := e.providers.Tracer.Start(observability.WithOperation(ctx, op), op)
	defer span.End()

	start := time.Now()
	results, err := fn(ctx)
	e.ops.Record(ctx, op, time.Since(start), results, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.DebugContext(ctx, "operation failed", "error", err)

		return err
	}

	e.logger.DebugContext(ctx, "operation done", "results", results, "elapsed", time.Since(start))

	return nil
}

// withEnv opens the runtime around fn.
func (g *Globals) withEnv(cmd *cobra.Command, fn func(e *env) error) (err error) {
	e, err := g.open(cmd)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, e.Close(context.WithoutCancel(cmd.Context())))
	}()

	return fn(e)
}
