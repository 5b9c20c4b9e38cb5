package e2e

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/scheduler"
	"maintenance-scheduler/infra/metrics"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// startInflux starts a provisioned InfluxDB 2.7 container and returns it
// along with the base URL. The container is left running until the context
// is cancelled.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	url := fmt.Sprintf("http://%s:%s", host, port.Port())
	return cont, url
}

// Test_E2E_SolveEventsReachInflux runs one optimizer solve against a live
// InfluxDB sink and verifies the solve_event measurement lands in the bucket.
func Test_E2E_SolveEventsReachInflux(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cont, url := startInflux(ctx, t)
	if cont != nil {
		defer cont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("InfluxDB started at %s", url)

	cli := NewInfluxClient(url, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	if err := cli.EnsureBucket(ctx); err != nil {
		t.Fatalf("setup bucket: %v", err)
	}

	sink := metrics.NewInfluxSink(url, influxToken, influxOrg, influxBucket)
	defer sink.Close()

	var cfg scheduler.Config
	cfg.SetDefaults()
	opt := scheduler.New(cfg, nil, nil, sink)

	start := model.NewDate(2025, time.March, 3)
	crews := []model.Crew{{
		Trade: "Elec", ShiftDurationHours: 8, TechniciansPerCrew: 2,
		Monday: true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true,
	}}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 8, NumPeople: 1, Priority: 1},
		{ID: "WO-2", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 2, Safety: true},
	}
	res, err := opt.Optimize(ctx, orders, crews, start)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if !res.Status.Succeeded() {
		t.Fatalf("status = %s", res.Status)
	}

	deadline := time.Now().Add(15 * time.Second)
	for {
		rows, statuses, err := cli.SolveEvents(ctx)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if rows > 0 {
			if statuses["optimal"] == 0 {
				t.Fatalf("no optimal solve_event, statuses: %v", statuses)
			}
			t.Logf("Influx query returned %d rows", rows)
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("no solve_event points returned from Influx")
		}
		time.Sleep(500 * time.Millisecond)
	}
}
