package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	codesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_codes_issued",
			Help: "Count of access codes issued.",
		},
	)

	codesRevoked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_codes_revoked",
			Help: "Count of revocations applied.",
		},
	)

	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_code_validations",
			Help: "Count of scanner validation calls per outcome.",
		},
		[]string{"result"},
	)

	generateFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "access_code_generate_failures",
			Help: "Count of generate calls that failed after passing input validation.",
		},
	)

	activeCodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "access_codes_active",
			Help: "Number of currently active codes, updated by the expiry sweep.",
		},
	)
)

func init() {
	register(codesIssued, codesRevoked, validations, generateFailures, activeCodes)
}

func IncCodesIssued() { codesIssued.Inc() }

func IncCodesRevoked() { codesRevoked.Inc() }

// IncValidation records one validation outcome: "ok", "not_found", "expired",
// "revoked" or "bad_request".
func IncValidation(result string) { validations.WithLabelValues(result).Inc() }

func IncGenerateFailure() { generateFailures.Inc() }

func SetActiveCodes(n int) { activeCodes.Set(float64(n)) }
