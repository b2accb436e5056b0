package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/internal/http"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// JobsClient implements awhere.JobsClient.
type JobsClient struct {
	api          apiRequester
	pollInterval time.Duration
}

// NewJobsClient creates a new jobs client.
func NewJobsClient(api apiRequester) *JobsClient {
	return &JobsClient{
		api:          api,
		pollInterval: constants.JobPollInterval,
	}
}

// Get implements awhere.JobsClient.Get.
func (c *JobsClient) Get(ctx context.Context, jobID string) (*awhere.Job, error) {
	var job awhere.Job

	err := doJSON(ctx, c.api, "GET", constants.APIPathJobs+"/"+url.PathEscape(jobID), nil, &job)
	if err != nil {
		return nil, fmt.Errorf("getting job: %w", err)
	}

	return &job, nil
}

// Batch implements awhere.JobsClient.Batch. It submits the requests as one
// batch job and polls until results appear or the job is cancelled or
// purged. Batch jobs are slow; ctx bounds the wait.
func (c *JobsClient) Batch(ctx context.Context, requests []awhere.BatchRequest) ([]awhere.JobResult, error) {
	if len(requests) == 0 {
		return nil, constants.ErrNoBatchRequests
	}

	batch := make([]map[string]interface{}, 0, len(requests))

	for i, request := range requests {
		api := "GET " + request.Path

		if request.Params != nil {
			query, err := http.EncodeQuery(request.Params)
			if err != nil {
				return nil, fmt.Errorf("encoding batch request %d: %w", i, err)
			}

			api += "?" + query
		}

		batch = append(batch, map[string]interface{}{
			"title": strconv.Itoa(i),
			"api":   api,
		})
	}

	var created awhere.Job

	err := doJSON(ctx, c.api, "POST", constants.APIPathJobs, awhere.Params{
		"type":     constants.JobTypeBatch,
		"requests": batch,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("creating batch job: %w", err)
	}

	if created.JobID == "" {
		return nil, awhere.ErrJobMissingID
	}

	return c.pollResults(ctx, created.JobID.String())
}

func (c *JobsClient) pollResults(ctx context.Context, jobID string) ([]awhere.JobResult, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		job, err := c.Get(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("getting job status: %w", err)
		}

		if job.Results != nil {
			return job.Results, nil
		}

		if job.JobStatus == constants.JobStatusCancelled || job.JobStatus == constants.JobStatusPurged {
			return nil, fmt.Errorf("%w: job %s is %s", awhere.ErrJobFailed, jobID, job.JobStatus)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}
