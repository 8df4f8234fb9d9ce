package login

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	flowDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegate_login_flows_total",
		Help: "Background login flows dispatched, by phase.",
	}, []string{"phase"})

	flowFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telegate_login_flow_failures_total",
		Help: "Background login flows that ended in failure, by phase.",
	}, []string{"phase"})

	loginSuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telegate_login_success_total",
		Help: "Completed logins with exported session data.",
	})

	storeAppendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "telegate_store_append_failures_total",
		Help: "Account store appends that failed and were swallowed.",
	})
)
