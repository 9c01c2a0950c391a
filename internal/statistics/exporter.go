package statistics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "fan_control"
)

func Register(collector prometheus.Collector) {
	prometheus.MustRegister(collector)
}
