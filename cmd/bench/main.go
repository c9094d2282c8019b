// Command bench runs a concurrent workload against a kvstore.Store and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/shardkv/kvstore"
	pmet "github.com/IvanBrykalov/shardkv/metrics/prom"
)

type config struct {
	capacity int
	shards   int
	lock     string
	recency  string
	hash     string

	workers  int
	duration time.Duration
	readPct  int
	opsLimit float64

	keys     int
	zipfS    float64
	zipfV    float64
	seed     int64
	preload  int
	valueLen int

	pprofAddr   string
	metricsAddr string
	logFormat   string
	logLevel    string
}

func parseFlags() config {
	var c config
	flag.IntVar(&c.capacity, "cap", 1024, "store capacity (entries)")
	flag.IntVar(&c.shards, "shards", 8, "number of shards (0=auto)")
	flag.StringVar(&c.lock, "lock", "mutex", "shard lock: mutex | spin")
	flag.StringVar(&c.recency, "recency", "access", "LRU recency: access | write")
	flag.StringVar(&c.hash, "hash", "fnv1a", "key hash: fnv1a | xxh64")

	flag.IntVar(&c.workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	flag.DurationVar(&c.duration, "duration", 10*time.Second, "benchmark duration")
	flag.IntVar(&c.readPct, "reads", 80, "read percentage [0..100]")
	flag.Float64Var(&c.opsLimit, "rate", 0, "total ops/sec limit across workers (0 = unlimited)")

	flag.IntVar(&c.keys, "keys", 1_000_000, "keyspace size")
	flag.Float64Var(&c.zipfS, "zipf_s", 1.1, "Zipf s > 1 (skew)")
	flag.Float64Var(&c.zipfV, "zipf_v", 1.0, "Zipf v >= 1")
	flag.Int64Var(&c.seed, "seed", time.Now().UnixNano(), "random seed")
	flag.IntVar(&c.preload, "preload", 0, "preload entries (0 = cap/2)")
	flag.IntVar(&c.valueLen, "value_len", 16, "value length in bytes")

	flag.StringVar(&c.pprofAddr, "pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	flag.StringVar(&c.metricsAddr, "http", "", "serve Prometheus metrics at addr (e.g. :8080); empty = disabled")
	flag.StringVar(&c.logFormat, "log", "text", "log format: text | json")
	flag.StringVar(&c.logLevel, "log_level", "info", "log level: debug | info | warn | error")
	flag.Parse()
	return c
}

func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (use text or json)", format)
	}
}

// storeOptions maps flag values onto kvstore.Options.
func storeOptions(c config) (kvstore.Options, error) {
	opt := kvstore.Options{
		Capacity:    c.capacity,
		Shards:      c.shards,
		MaxValueLen: max(c.valueLen, kvstore.DefaultMaxValueLen),
	}
	switch c.lock {
	case "mutex":
	case "spin":
		opt.Lock = kvstore.LockSpin
	default:
		return opt, fmt.Errorf("unknown lock %q (use mutex or spin)", c.lock)
	}
	switch c.recency {
	case "access":
	case "write":
		opt.Recency = kvstore.RecencyWrite
	default:
		return opt, fmt.Errorf("unknown recency %q (use access or write)", c.recency)
	}
	switch c.hash {
	case "fnv1a":
	case "xxh64":
		opt.Hash = kvstore.HashXXH64
	default:
		return opt, fmt.Errorf("unknown hash %q (use fnv1a or xxh64)", c.hash)
	}
	return opt, nil
}

type counters struct {
	reads, writes, hits, misses, total atomic.Uint64
}

func main() {
	c := parseFlags()
	log, err := newLogger(c.logFormat, c.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(c, log); err != nil {
		log.Error("bench failed", "error", err)
		os.Exit(1)
	}
}

func run(c config, log *slog.Logger) error {
	if c.keys < 1 {
		return errors.New("keys must be >= 1")
	}
	if c.readPct < 0 || c.readPct > 100 {
		return fmt.Errorf("reads must be in [0,100], got %d", c.readPct)
	}

	opt, err := storeOptions(c)
	if err != nil {
		return err
	}
	opt.Logger = log

	// ---- pprof and Prometheus share DefaultServeMux ----
	if c.metricsAddr != "" {
		opt.Metrics = pmet.New(nil, "shardkv", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		serve(log, "metrics", c.metricsAddr)
	}
	if c.pprofAddr != "" && c.pprofAddr != c.metricsAddr {
		serve(log, "pprof", c.pprofAddr)
	}

	st, err := kvstore.New(opt)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	value := make([]byte, c.valueLen)
	for i := range value {
		value[i] = 'a' + byte(i%26)
	}

	pl := c.preload
	if pl == 0 {
		pl = c.capacity / 2
	}
	for i := 0; i < pl; i++ {
		if err := st.Put([]byte("k:"+strconv.Itoa(i)), value); err != nil {
			return fmt.Errorf("preload: %w", err)
		}
	}
	log.Info("preloaded", "entries", st.Size(), "capacity", st.Capacity(), "shards", st.Shards())

	var limiter *rate.Limiter
	if c.opsLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.opsLimit), max(1, int(c.opsLimit/100)))
	}

	workers := max(c.workers, 1)
	ctx, cancel := context.WithTimeout(context.Background(), c.duration)
	defer cancel()

	var cnt counters
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return worker(gctx, st, &cnt, limiter, c, w, value)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	report(c, st, &cnt, workers, elapsed)
	return nil
}

// worker issues Zipf-distributed reads and writes until ctx ends.
func worker(ctx context.Context, st kvstore.Store, cnt *counters, limiter *rate.Limiter, c config, id int, value []byte) error {
	// rand.Rand is not goroutine-safe: one RNG and Zipf per worker.
	r := rand.New(rand.NewSource(c.seed + int64(id)*9973))
	zipf := rand.NewZipf(r, c.zipfS, c.zipfV, uint64(c.keys-1))
	key := make([]byte, 0, kvstore.DefaultMaxKeyLen)
	buf := make([]byte, 0, len(value))

	for ctx.Err() == nil {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil // deadline reached while waiting
			}
		}
		key = strconv.AppendUint(append(key[:0], "k:"...), zipf.Uint64(), 10)

		cnt.total.Add(1)
		if int(r.Int31n(100)) < c.readPct {
			cnt.reads.Add(1)
			var ok bool
			if buf, ok = st.GetInto(buf[:0], key); ok {
				cnt.hits.Add(1)
			} else {
				cnt.misses.Add(1)
			}
			continue
		}
		cnt.writes.Add(1)
		if err := st.Put(key, value); err != nil {
			return err
		}
	}
	return nil
}

func report(c config, st kvstore.Store, cnt *counters, workers int, elapsed time.Duration) {
	ops := cnt.total.Load()
	reads := cnt.reads.Load()
	hitRate := 0.0
	if reads > 0 {
		hitRate = float64(cnt.hits.Load()) / float64(reads) * 100
	}
	s := st.Stats()

	fmt.Printf("cap=%d shards=%d lock=%s recency=%s hash=%s workers=%d keys=%d dur=%v seed=%d\n",
		st.Capacity(), st.Shards(), c.lock, c.recency, c.hash, workers, c.keys, elapsed, c.seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), reads, cnt.writes.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", cnt.hits.Load(), cnt.misses.Load(), hitRate)
	fmt.Printf("size=%d  evictions=%d  rejects=%d\n", st.Size(), s.Evictions, s.Rejects)
}

func serve(log *slog.Logger, what, addr string) {
	go func() {
		log.Info("serving", "endpoint", what, "addr", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Error("http server stopped", "endpoint", what, "error", err)
		}
	}()
}
