package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_documents_written_total",
			Help: "Documents committed by the document repository, by kind and operation",
		},
		[]string{"kind", "operation"},
	)

	sequenceFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_sequence_fallback_total",
			Help: "Document numbers issued from the deterministic fallback because the counter was unreachable",
		},
		[]string{"scheme"},
	)
)
