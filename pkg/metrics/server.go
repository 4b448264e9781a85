package metrics

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// familyPrefixes are the metric families listed on the index page.
var familyPrefixes = []string{"prerank_", "auxtable_", "partition_", "section_cache_", "editor_", "ranker_"}

// NewServeMux serves the collectors of g on /metrics and an index of the
// pre-ranker's own metric families on /.
func NewServeMux(g prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:          log.New(&slogWriter{}, "", 0),
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		names, err := familyNames(g)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "pre-ranker metrics, scrape /metrics")
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
	})
	return mux
}

func familyNames(g prometheus.Gatherer) ([]string, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}
	var names []string
	for _, mf := range families {
		for _, prefix := range familyPrefixes {
			if strings.HasPrefix(mf.GetName(), prefix) {
				names = append(names, mf.GetName())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// slogWriter forwards promhttp's error log to slog.
type slogWriter struct{}

func (slogWriter) Write(p []byte) (int, error) {
	slog.Error("metrics exposition error", "error", strings.TrimSpace(string(p)))
	return len(p), nil
}

// StartServer serves NewServeMux(g) in the background and returns the
// server's shutdown function.
func StartServer(port int, g prometheus.Gatherer) (shutdown func(context.Context) error) {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewServeMux(g),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()

	return server.Shutdown
}
