// Package testutil starts the Postgres and Redis containers used by
// integration tests. Tests are skipped when Docker is not available or when
// running with -short.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func start(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) string {
	t.Helper()
	if testing.Short() {
		t.Skipf("%s container skipped in -short mode", req.Image)
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	testcontainers.Logger = log.New(io.Discard, "", 0)

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started:          true,
		ContainerRequest: req,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Fatal(err)
		}
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatal(err)
	}
	return net.JoinHostPort(host, mapped.Port())
}

// Postgres returns the URL of a fresh database.
func Postgres(t *testing.T) string {
	addr := start(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "etl",
			"POSTGRES_PASSWORD": "etl",
			"POSTGRES_DB":       "etl",
		},
		// o postgres reinicia uma vez depois do initdb
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}, "5432/tcp")
	return fmt.Sprintf("postgres://etl:etl@%s/etl?sslmode=disable", addr)
}

// Redis returns the host:port of an empty Redis server.
func Redis(t *testing.T) string {
	return start(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}, "6379/tcp")
}
