package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wufe/yeelight"
)

const (
	outcomeReplied = "replied"
	outcomeSilent  = "silent"
	outcomeFailed  = "failed"
)

type exchangeMetrics struct {
	registry  *prometheus.Registry
	exchanges *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func newExchangeMetrics() *exchangeMetrics {
	m := &exchangeMetrics{
		registry: prometheus.NewRegistry(),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "yeelight",
			Name:      "exchanges_total",
			Help:      "Commands sent to bulbs, by bulb, method and outcome.",
		}, []string{"bulb", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "yeelight",
			Name:      "exchange_duration_seconds",
			Help:      "Time from dial to reply or timeout.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method"}),
	}
	m.registry.MustRegister(m.exchanges, m.duration)
	return m
}

func (m *exchangeMetrics) Observe(e yeelight.Exchange) {
	outcome := outcomeReplied
	switch {
	case e.Err != nil:
		outcome = outcomeFailed
	case !e.Received:
		outcome = outcomeSilent
	}
	method := e.Command.Method().String()
	m.exchanges.WithLabelValues(e.Device.ID, method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(e.Elapsed.Seconds())
}

func (m *exchangeMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
