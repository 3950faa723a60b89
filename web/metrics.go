package web

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JoeSaf/StorageBuckets/app"
)

// Prometheus metrics
var (
	commandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storagebucket_commands_total",
		Help: "Executed commands by name and outcome level",
	}, []string{"command", "level"})

	wsRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storagebucket_ws_tree_requests_total",
		Help: "Tree requests answered over the websocket",
	})

	totalBuckets = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storagebucket_buckets",
		Help: "Number of buckets",
	})

	totalUploads = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storagebucket_uploaded_files",
		Help: "Number of files in the uploads root",
	})
)

func init() {
	prometheus.MustRegister(commandsTotal)
	prometheus.MustRegister(wsRequests)
	prometheus.MustRegister(totalBuckets)
	prometheus.MustRegister(totalUploads)
}

func observeCommand(command string, out app.Outcome) {
	commandsTotal.WithLabelValues(command, out.Level.String()).Inc()
}

// updateMetrics refreshes the gauges from the filesystem.
func updateMetrics(a *app.App) {
	st := a.Storage()
	if buckets, err := st.ListBuckets(); err == nil {
		totalBuckets.Set(float64(len(buckets)))
	} else {
		log.Warnf("Failed to list buckets for metrics: %v", err)
	}

	entries, err := os.ReadDir(st.Layout().Uploads)
	if err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to read uploads for metrics: %v", err)
		return
	}
	files := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			files++
		}
	}
	totalUploads.Set(float64(files))
}

func handleMetrics(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		updateMetrics(a)
		return adaptor.HTTPHandler(promhttp.Handler())(c)
	}
}
