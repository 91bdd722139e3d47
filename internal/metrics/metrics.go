package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuannm99/verticareader/internal/native"
)

// Metrics holds the counters for one or more decode runs.
type Metrics struct {
	Rows      prometheus.Counter
	RowGroups prometheus.Counter
	Bytes     prometheus.Counter
	Nulls     prometheus.Counter
	Errors    *prometheus.CounterVec
	Runs      *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	rows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verticareader_rows_decoded_total",
		Help: "Rows decoded from native files",
	})
	groups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verticareader_row_groups_total",
		Help: "Row groups read from native files",
	})
	bytesRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verticareader_bytes_read_total",
		Help: "Bytes consumed from native files, header included",
	})
	nulls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "verticareader_null_values_total",
		Help: "NULL column values decoded",
	})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verticareader_errors_total",
		Help: "Failed runs by error kind",
	}, []string{"kind"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verticareader_runs_total",
		Help: "Completed runs by output format",
	}, []string{"format"})

	reg.MustRegister(rows, groups, bytesRead, nulls, errs, runs)

	return &Metrics{
		Rows:      rows,
		RowGroups: groups,
		Bytes:     bytesRead,
		Nulls:     nulls,
		Errors:    errs,
		Runs:      runs,
	}
}

// Record adds the totals of a finished run.
func (m *Metrics) Record(format string, st native.Stats) {
	m.Rows.Add(float64(st.Rows))
	m.RowGroups.Add(float64(st.RowGroups))
	m.Bytes.Add(float64(st.Bytes))
	m.Nulls.Add(float64(st.Nulls))
	m.Runs.WithLabelValues(format).Inc()
}

// ObserveError counts err under its decode kind, or "other".
func (m *Metrics) ObserveError(err error) {
	if err == nil {
		return
	}
	m.Errors.WithLabelValues(ErrorLabel(err)).Inc()
}

func ErrorLabel(err error) string {
	switch native.ErrorKind(err) {
	case native.ErrHeader:
		return "header"
	case native.ErrFraming:
		return "framing"
	case native.ErrSchemaMismatch:
		return "schema_mismatch"
	case native.ErrDecode:
		return "decode"
	}
	return "other"
}

// WriteTextfile dumps everything gathered by g in the node exporter
// textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
