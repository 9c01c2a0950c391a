package statistics

import (
	"github.com/loislo/fan-control/internal/control"
	"github.com/prometheus/client_golang/prometheus"
)

const controlSubsystem = "control"

type ControlCollector struct {
	loop *control.Loop

	maxTemp    *prometheus.Desc
	targetDuty *prometheus.Desc
	offset     *prometheus.Desc
	iteration  *prometheus.Desc
}

func NewControlCollector(loop *control.Loop) *ControlCollector {
	return &ControlCollector{
		loop: loop,
		maxTemp: prometheus.NewDesc(prometheus.BuildFQName(namespace, controlSubsystem, "max_temp_celsius"),
			"Hottest control sensor reading of the last iteration",
			nil, nil,
		),
		targetDuty: prometheus.NewDesc(prometheus.BuildFQName(namespace, controlSubsystem, "target_duty"),
			"Duty value written in the last iteration",
			nil, nil,
		),
		offset: prometheus.NewDesc(prometheus.BuildFQName(namespace, controlSubsystem, "offset"),
			"Manual duty offset applied on top of the curve",
			nil, nil,
		),
		iteration: prometheus.NewDesc(prometheus.BuildFQName(namespace, controlSubsystem, "iteration_count"),
			"Number of completed control loop iterations",
			nil, nil,
		),
	}
}

func (collector *ControlCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.maxTemp
	ch <- collector.targetDuty
	ch <- collector.offset
	ch <- collector.iteration
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControlCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot, ok := collector.loop.LastSnapshot()
	if !ok {
		return
	}
	ch <- prometheus.MustNewConstMetric(collector.maxTemp, prometheus.GaugeValue, snapshot.MaxTemp)
	ch <- prometheus.MustNewConstMetric(collector.targetDuty, prometheus.GaugeValue, float64(snapshot.TargetDuty))
	ch <- prometheus.MustNewConstMetric(collector.offset, prometheus.GaugeValue, float64(snapshot.Offset))
	ch <- prometheus.MustNewConstMetric(collector.iteration, prometheus.CounterValue, float64(snapshot.Iteration))
}
