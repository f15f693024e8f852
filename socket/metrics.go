package socket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	promNamespace       = "psp_net"
	promSubsystemSocket = "socket"

	labelNameProto = "proto"
)

var (
	metricLabelsSocket = []string{labelNameProto}

	bytesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystemSocket,
		Name:      "sent_bytes",
		Help:      "Total number of bytes accepted by the platform send syscall.",
	}, metricLabelsSocket)

	bytesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystemSocket,
		Name:      "received_bytes",
		Help:      "Total number of bytes returned by the platform recv syscall.",
	}, metricLabelsSocket)

	partialSends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promSubsystemSocket,
		Name:      "partial_sends",
		Help:      "Total number of sends where the platform accepted fewer bytes than buffered.",
	}, metricLabelsSocket)
)
