package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient wraps the official InfluxDB v2 client for the E2E suite. It
// hides token/org/bucket plumbing and knows how to count the scheduler's
// solve_event points.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for a running InfluxDB instance.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		org:    org,
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// EnsureBucket creates the organisation and bucket when they do not exist
// yet, using the management API.
func (c *InfluxClient) EnsureBucket(ctx context.Context) error {
	orgAPI := c.client.OrganizationsAPI()
	org, err := orgAPI.FindOrganizationByName(ctx, c.org)
	if err != nil || org == nil {
		org, err = orgAPI.CreateOrganizationWithName(ctx, c.org)
		if err != nil {
			return fmt.Errorf("create org: %w", err)
		}
	}

	bucketAPI := c.client.BucketsAPI()
	buckets, err := bucketAPI.FindBucketsByOrgName(ctx, c.org)
	if err != nil {
		return err
	}
	if buckets != nil {
		for _, b := range *buckets {
			if b.Name == c.bucket {
				return nil
			}
		}
	}
	if _, err := bucketAPI.CreateBucketWithName(ctx, org, c.bucket); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// SolveEvents returns how many solve_event rows were written in the last
// five minutes, broken down by solve status.
func (c *InfluxClient) SolveEvents(ctx context.Context) (int, map[string]int, error) {
	flux := fmt.Sprintf(`from(bucket:"%s")
  |> range(start:-5m)
  |> filter(fn: (r) => r._measurement == "solve_event")`, c.bucket)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = res.Close() }()

	rows := 0
	statuses := make(map[string]int)
	for res.Next() {
		rows++
		if s, ok := res.Record().ValueByKey("status").(string); ok {
			statuses[s]++
		}
	}
	return rows, statuses, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
