package handler

import (
	"time"

	"github.com/Doridian/synthDNS/util"
	"github.com/miekg/dns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synthdns_queries_processed_total",
		Help: "The total number of processed DNS queries",
	}, []string{"qtype", "rcode", "handler"})

	queryProcessingTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "synthdns_query_processing_time_seconds",
		Help:    "The time it took to process a DNS query",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"handler"})
)

func MeasureQuery(startTime time.Time, reply *dns.Msg, handlerName string) {
	duration := time.Since(startTime)

	qtype := ""
	if len(reply.Question) > 0 {
		qtype = dns.TypeToString[reply.Question[0].Qtype]
	}

	rcode := dns.RcodeToString[reply.Rcode]
	if reply.Rcode == dns.RcodeSuccess && len(reply.Answer) == 0 {
		rcode = "NXRECORD"
	}

	queriesProcessed.WithLabelValues(qtype, rcode, handlerName).Inc()
	queryProcessingTime.WithLabelValues(handlerName).Observe(duration.Seconds())
}

// NewCounterCollector exposes the request counter as a prometheus counter.
func NewCounterCollector(counter *util.RequestCounter) prometheus.CounterFunc {
	return prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "synthdns_requests_counted_total",
		Help: "The number of requests dispatched to a zone generator",
	}, func() float64 {
		return float64(counter.Load())
	})
}
