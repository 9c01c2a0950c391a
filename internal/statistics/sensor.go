package statistics

import (
	"github.com/loislo/fan-control/internal/sensors"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystemSensor = "sensor"

type SensorCollector struct {
	sensors []sensors.Sensor
	celsius *prometheus.Desc
}

func NewSensorCollector(sensors []sensors.Sensor) *SensorCollector {
	return &SensorCollector{
		sensors: sensors,
		celsius: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemSensor, "celsius"),
			"Current temperature of the sensor in degrees celsius",
			[]string{"id", "role"}, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.celsius
}

// Collect implements required collect function for all prometheus collectors
func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	for _, sensor := range collector.sensors {
		value, err := sensor.GetValue()
		if err != nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(collector.celsius, prometheus.GaugeValue, value, sensor.GetId(), sensor.GetRole().String())
	}
}
