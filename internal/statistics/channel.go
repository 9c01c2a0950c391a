package statistics

import (
	"github.com/loislo/fan-control/internal/channels"
	"github.com/prometheus/client_golang/prometheus"
)

const channelSubsystem = "channel"

type ChannelCollector struct {
	channels []channels.Channel
	duty     *prometheus.Desc
	rpm      *prometheus.Desc
}

func NewChannelCollector(channels []channels.Channel) *ChannelCollector {
	return &ChannelCollector{
		channels: channels,
		duty: prometheus.NewDesc(prometheus.BuildFQName(namespace, channelSubsystem, "duty"),
			"Current duty value of the fan channel",
			[]string{"id"}, nil,
		),
		rpm: prometheus.NewDesc(prometheus.BuildFQName(namespace, channelSubsystem, "rpm"),
			"Current RPM value of the fan channel",
			[]string{"id"}, nil,
		),
	}
}

func (collector *ChannelCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.duty
	ch <- collector.rpm
}

// Collect implements required collect function for all prometheus collectors
func (collector *ChannelCollector) Collect(ch chan<- prometheus.Metric) {
	for _, channel := range collector.channels {
		channelId := channel.GetId()
		if duty, err := channel.GetDuty(); err == nil {
			ch <- prometheus.MustNewConstMetric(collector.duty, prometheus.GaugeValue, float64(duty), channelId)
		}
		if channel.SupportsRpmSensor() {
			if rpm, err := channel.GetRpm(); err == nil {
				ch <- prometheus.MustNewConstMetric(collector.rpm, prometheus.GaugeValue, float64(rpm), channelId)
			}
		}
	}
}
