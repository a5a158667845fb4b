package e2e_harness

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lychee-technology/eureka"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	s3AccessKey = "minio"
	s3SecretKey = "minio123"
)

// TestHarness holds lightweight runners for dependencies used by E2E tests.
type TestHarness struct {
	PGContainer testcontainers.Container
	PGConfig    eureka.DatabaseConfig
	S3Container testcontainers.Container
	S3Endpoint  string
}

// StartPostgres starts a postgres container and fills PGConfig with its
// address. Caller is responsible for calling StopPostgres.
func (h *TestHarness) StartPostgres(ctx context.Context) (eureka.DatabaseConfig, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "eureka",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return eureka.DatabaseConfig{}, err
	}
	h.PGContainer = container

	host, err := container.Host(ctx)
	if err != nil {
		return eureka.DatabaseConfig{}, err
	}
	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return eureka.DatabaseConfig{}, err
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return eureka.DatabaseConfig{}, fmt.Errorf("parse mapped port %q: %w", mapped.Port(), err)
	}

	cfg := eureka.DefaultConfig().Database
	cfg.Host = host
	cfg.Port = port
	cfg.Database = "eureka"
	cfg.Username = "postgres"
	cfg.Password = "password"
	cfg.MaxConnections = 4
	cfg.MaxIdleConns = 1
	h.PGConfig = cfg
	return cfg, nil
}

// StopPostgres stops the Postgres container.
func (h *TestHarness) StopPostgres(ctx context.Context) error {
	if h.PGContainer != nil {
		if err := h.PGContainer.Terminate(ctx); err != nil {
			return err
		}
		h.PGContainer = nil
	}
	return nil
}

// StartS3 starts a MinIO container and returns its endpoint.
func (h *TestHarness) StartS3(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     s3AccessKey,
			"MINIO_ROOT_PASSWORD": s3SecretKey,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}
	h.S3Container = container
	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	mapped, err := container.MappedPort(ctx, "9000")
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("http://%s:%s", host, mapped.Port())
	h.S3Endpoint = endpoint
	return endpoint, nil
}

// StopS3 stops the MinIO container.
func (h *TestHarness) StopS3(ctx context.Context) error {
	if h.S3Container != nil {
		if err := h.S3Container.Terminate(ctx); err != nil {
			return err
		}
		h.S3Container = nil
	}
	return nil
}

// SchemaSource returns a schema source pointing at the MinIO container.
func (h *TestHarness) SchemaSource(bucket, prefix string) eureka.SchemaConfigSrc {
	return eureka.SchemaConfigSrc{
		S3Bucket:    bucket,
		S3Prefix:    prefix,
		S3Region:    "us-east-1",
		S3Endpoint:  h.S3Endpoint,
		S3AccessKey: s3AccessKey,
		S3SecretKey: s3SecretKey,
	}
}
