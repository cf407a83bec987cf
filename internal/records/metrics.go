package records

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Workflow outcome counters, exported on /metrics by the serve command.
var (
	workflowTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datafiles_workflow_total",
			Help: "Record workflows by kind and outcome",
		},
		[]string{"workflow", "outcome"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datafiles_uploads_total",
			Help: "Attachment uploads by workflow and outcome",
		},
		[]string{"workflow", "outcome"},
	)

	rollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datafiles_create_rollbacks_total",
			Help: "Compensating deletes issued after a failed creation",
		},
		[]string{"outcome"},
	)
)

const (
	workflowCreate = "create"
	workflowUpdate = "update"

	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)
