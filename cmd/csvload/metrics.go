package main

import (
	"fmt"
	"log"
	"strings"

	"csvload/internal/metrics"
	"csvload/internal/metrics/datadog"
	"csvload/internal/metrics/prompush"
)

type metricsSettings struct {
	backend        string
	pushgatewayURL string
	datadogAddr    string
	job            string
	verbose        bool
}

// setupMetrics installs the selected backend and returns a func that flushes
// it. The nop backend stays in place for "none".
func setupMetrics(s metricsSettings) (func(), error) {
	var (
		b   metrics.Backend
		err error
	)

	switch strings.ToLower(s.backend) {
	case "", "none":
		if s.verbose {
			log.Printf("metrics: disabled")
		}
		return func() {}, nil

	case "prometheus", "pushgateway":
		url := s.pushgatewayURL
		if url == "" {
			url = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(s.job, url)
		if err == nil && s.verbose {
			log.Printf("metrics: backend=prometheus url=%s job=%s", url, s.job)
		}

	case "datadog":
		addr := s.datadogAddr
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "csvload.",
			GlobalTags: []string{"job:" + s.job},
		})
		if err == nil && s.verbose {
			log.Printf("metrics: backend=datadog addr=%s job=%s", addr, s.job)
		}

	default:
		return nil, fmt.Errorf("unknown metrics backend %q (want none, prometheus or datadog)", s.backend)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}, nil
}
