package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement results.
const (
	SettlementMerged    = "merged"
	SettlementAdopted   = "adopted"
	SettlementUnchanged = "unchanged"
	SettlementReverted  = "reverted"
)

var (
	instantUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quote_engine",
		Name:      "instant_updates_total",
		Help:      "Messages run through the local interpreter, by outcome.",
	}, []string{"outcome"})

	settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quote_engine",
		Name:      "settlements_total",
		Help:      "Assistant round trips settled, by result.",
	}, []string{"result"})

	sessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quote_engine",
		Name:      "sessions_open",
		Help:      "Sessions currently held in memory.",
	})
)
