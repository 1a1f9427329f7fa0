package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts submission outcomes.
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expertise_submissions_total",
			Help: "Submission pipeline outcomes",
		},
		[]string{"result"},
	)

	// SubmissionRetries counts retried submission attempts.
	SubmissionRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "expertise_submission_retries_total",
			Help: "Submission attempts retried after a transient failure",
		},
	)

	// UploadFailures counts failed photo upload batches.
	UploadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "expertise_upload_failures_total",
			Help: "Photo upload batches that failed and were rolled back",
		},
	)
)
