// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package metrics exposes protocol-client counters for Prometheus scraping.
// Each Metrics value owns a private registry so that tests and independent
// sessions never share global collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Download results recorded by DownloadsTotal.
const (
	DownloadOK     = "ok"
	DownloadFailed = "failed"
)

// Metrics holds the collectors updated by the action envelope and the file monitor.
type Metrics struct {
	registry *prometheus.Registry

	ActionsTotal   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
	DownloadsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mxprobe",
			Name:      "xas_actions_total",
			Help:      "XAS actions sent, by action and HTTP status code (0 for transport errors).",
		}, []string{"action", "code"}),
		ActionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mxprobe",
			Name:      "xas_action_duration_seconds",
			Help:      "Round-trip time of XAS actions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		DownloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mxprobe",
			Name:      "file_downloads_total",
			Help:      "FileDocument downloads attempted by the monitor, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.ActionsTotal, m.ActionDuration, m.DownloadsTotal)
	return m
}

// ObserveAction records one action round-trip. A nil receiver is a no-op.
func (m *Metrics) ObserveAction(action string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(action, strconv.Itoa(code)).Inc()
	m.ActionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveDownload records one download attempt. A nil receiver is a no-op.
func (m *Metrics) ObserveDownload(result string) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
