package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EditsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sketchem_edits_applied_total",
		Help: "Total number of edit commands applied, labelled by command kind.",
	}, []string{"kind"})

	EditsMerged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sketchem_edits_merged_total",
		Help: "Total number of edits coalesced into an existing log entry.",
	}, []string{"kind"})

	EditsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sketchem_edits_rejected_total",
		Help: "Total number of edits refused by precondition checks.",
	}, []string{"kind"})

	UndoOps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketchem_undo_total",
		Help: "Total number of undo operations performed.",
	})

	RedoOps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketchem_redo_total",
		Help: "Total number of redo operations performed.",
	})

	UndoDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sketchem_undo_depth",
		Help: "Commands currently behind the undo cursor.",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sketchem_edit_events_dropped_total",
		Help: "Edit events dropped because the notification queue was full.",
	})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sketchem_ws_clients",
		Help: "WebSocket clients currently subscribed to the edit stream.",
	})
)
