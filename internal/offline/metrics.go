package offline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spark_offline_fetch_total",
	Help: "Asset fetches handled by the offline worker, by response source.",
}, []string{"source"})
