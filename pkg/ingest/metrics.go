package ingest

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts ingestion outcomes. A nil *Metrics records nothing.
type Metrics struct {
	recordsWritten *prometheus.CounterVec
	rowsDropped    *prometheus.CounterVec
	files          *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	recordsWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_ingest_records_written_total",
		Help: "Records inserted by ingestion runs.",
	}, []string{"kind"})

	rowsDropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_ingest_rows_dropped_total",
		Help: "Source rows dropped for a missing or sentinel timestamp.",
	}, []string{"kind"})

	files := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_ingest_files_total",
		Help: "Source files by ingestion outcome.",
	}, []string{"kind", "status"})

	reg.MustRegister(recordsWritten, rowsDropped, files)

	return &Metrics{
		recordsWritten: recordsWritten,
		rowsDropped:    rowsDropped,
		files:          files,
	}
}

func (m *Metrics) observe(kind Kind, res FileResult) {
	if m == nil {
		return
	}
	m.recordsWritten.WithLabelValues(string(kind)).Add(float64(res.Records))
	m.rowsDropped.WithLabelValues(string(kind)).Add(float64(res.Dropped))
	m.files.WithLabelValues(string(kind), string(res.Status)).Inc()
}
