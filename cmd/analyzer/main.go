package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"ridevalue/dlv"
	"ridevalue/models"
	"ridevalue/store"
)

// estimatesChannel is where finished runs are published for the live feed.
const estimatesChannel = "ridevalue:estimates"

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridevalue_analyzer_runs_total",
		Help: "Total number of analysis runs started.",
	})
	runFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridevalue_analyzer_run_failures_total",
		Help: "Total number of analysis runs that failed.",
	})
	storeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridevalue_analyzer_store_failures_total",
		Help: "Total number of rows that failed to store.",
	})
	summariesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridevalue_analyzer_summaries_stored_total",
		Help: "Total number of driver summaries upserted.",
	})
	estimatesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridevalue_analyzer_estimates_stored_total",
		Help: "Total number of estimates stored in DB.",
	})
	estimatesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridevalue_analyzer_estimates_published_total",
		Help: "Total number of estimates published to Redis.",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ridevalue_analyzer_run_duration_seconds",
		Help:    "Duration of a full analysis run.",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
	ridesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ridevalue_analyzer_rides_loaded",
		Help: "Ride records loaded in the most recent run.",
	})
	latestDLV = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ridevalue_analyzer_latest_dlv_dollars",
		Help: "Most recent driver lifetime value estimate in dollars.",
	})
	latestDecayRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ridevalue_analyzer_latest_decay_rate",
		Help: "Most recent fitted churn decay rate per day.",
	})
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := getEnv("SOURCE", "csv")
	csvPath := getEnv("CSV_PATH", "ride_donations.csv")
	dbDSN := getEnv("DB_DSN", "")
	redisURL := getEnv("REDIS_URL", "")
	metricsAddr := getEnv("METRICS_ADDR", ":8081")
	intervalSec := getEnvInt("ANALYZE_INTERVAL_SEC", 0)
	tzOffset := getEnvInt("TZ_OFFSET_HOURS", 0)
	window := getEnvInt("ACTIVE_WINDOW_DAYS", dlv.DefaultActiveWindowDays)
	share := getEnvFloat("REVENUE_SHARE", dlv.DefaultRevenueShare)

	if source != "csv" && source != "postgres" {
		log.Fatalf("invalid SOURCE=%q, want csv or postgres", source)
	}
	if source == "postgres" && dbDSN == "" {
		log.Fatalf("SOURCE=postgres requires DB_DSN")
	}

	var st *store.Store
	if dbDSN != "" {
		var err error
		st, err = store.New(ctx, dbDSN)
		if err != nil {
			if source == "postgres" {
				log.Fatalf("db connect failed: %v", err)
			}
			log.Printf("db unavailable, results will not be stored: %v", err)
		} else {
			defer st.Close()
			if err := st.EnsureSchema(ctx); err != nil {
				log.Fatalf("schema init failed: %v", err)
			}
			log.Printf("db connected")
		}
	}

	var redisClient *redis.Client
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Printf("invalid REDIS_URL, skipping redis: %v", err)
		} else {
			redisClient = redis.NewClient(opts)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("redis ping failed, skipping redis: %v", err)
				redisClient = nil
			} else {
				defer redisClient.Close()
				log.Printf("redis connected: %s", redisURL)
			}
		}
	}

	loc := dlv.FixedZone(tzOffset)
	opts := dlv.Options{ActiveWindowDays: window, RevenueShare: share}

	// One-shot by default: analyze, report, exit.
	if intervalSec <= 0 {
		if err := runOnce(ctx, st, redisClient, source, csvPath, loc, opts); err != nil {
			log.Fatalf("analysis failed: %v", err)
		}
		return
	}

	go serveHTTP(metricsAddr)

	interval := time.Duration(intervalSec) * time.Second
	log.Printf("analyzer running: source=%s interval=%s window=%dd share=%.2f",
		source, interval, window, share)

	if err := runOnce(ctx, st, redisClient, source, csvPath, loc, opts); err != nil {
		log.Printf("analysis failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := runOnce(ctx, st, redisClient, source, csvPath, loc, opts); err != nil {
				log.Printf("analysis failed: %v", err)
			}
		case <-ctx.Done():
			log.Printf("analyzer shutting down")
			return
		}
	}
}

func runOnce(ctx context.Context, st *store.Store, redisClient *redis.Client, source, csvPath string, loc *time.Location, opts dlv.Options) error {
	start := time.Now()
	defer func() {
		runDuration.Observe(time.Since(start).Seconds())
	}()
	runsTotal.Inc()

	var ds *dlv.Dataset
	var err error
	switch source {
	case "postgres":
		ds, err = st.LoadRides(ctx, loc)
	default:
		ds, err = loadCSVFile(csvPath, loc)
	}
	if err != nil {
		runFailures.Inc()
		return fmt.Errorf("load %s: %w", source, err)
	}
	ridesLoaded.Set(float64(ds.TotalRides))

	res, err := dlv.Run(ds, opts)
	if err != nil {
		runFailures.Inc()
		return err
	}

	fmt.Print(dlv.RenderReport(ds, res))

	runAt := time.Now().UTC().Truncate(time.Second)
	est := models.NewEstimate(res, uuid.New(), runAt, source)

	stored := 0
	if st != nil {
		stored = st.SaveSummaries(ctx, res.Summaries, runAt)
		summariesStored.Add(float64(stored))
		if failed := len(res.Summaries) - stored; failed > 0 {
			storeFailures.Add(float64(failed))
		}
		if err := st.SaveEstimate(ctx, est); err != nil {
			storeFailures.Inc()
			log.Printf("estimate not stored: %v", err)
		} else {
			estimatesStored.Inc()
		}
	}

	published := false
	if redisClient != nil {
		data, err := json.Marshal(est)
		if err != nil {
			log.Printf("estimate marshal failed: %v", err)
		} else if err := redisClient.Publish(ctx, estimatesChannel, data).Err(); err != nil {
			log.Printf("redis publish failed: %v", err)
		} else {
			estimatesPublished.Inc()
			published = true
		}
	}

	latestDLV.Set(est.DLVPerDriver)
	latestDecayRate.Set(est.DecayRate)

	log.Printf("analysis completed: drivers=%d active=%d rides=%d dlv=$%.2f stored=%d published=%t (%.2fs)",
		est.TotalDrivers, est.ActiveDrivers, est.RecordedRides, est.DLVPerDriver,
		stored, published, time.Since(start).Seconds())
	return nil
}

func loadCSVFile(path string, loc *time.Location) (*dlv.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dlv.LoadCSV(f, loc)
}

func serveHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("metrics server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("metrics server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.2f", key, value, fallback)
		return fallback
	}
	return f
}
