package tcpostgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	DefaultImage = "postgres:17-alpine"
	DefaultName  = "race-engineer-test"
	pgPort       = nat.Port("5432/tcp")
	readyLog     = "database system is ready to accept connections"
)

// ContainerConfig describes the postgres test container.
// Containers are reused by name across test packages.
type ContainerConfig struct {
	Image          string
	Name           string
	User           string
	Password       string
	Database       string
	StartupTimeout time.Duration
}

type ContainerOption func(cfg *ContainerConfig)

func WithImage(image string) ContainerOption {
	return func(cfg *ContainerConfig) {
		cfg.Image = image
	}
}

func WithName(name string) ContainerOption {
	return func(cfg *ContainerConfig) {
		cfg.Name = name
	}
}

func WithCredentials(user, password string) ContainerOption {
	return func(cfg *ContainerConfig) {
		cfg.User, cfg.Password = user, password
	}
}

func WithDatabase(name string) ContainerOption {
	return func(cfg *ContainerConfig) {
		cfg.Database = name
	}
}

func WithStartupTimeout(d time.Duration) ContainerOption {
	return func(cfg *ContainerConfig) {
		if d > 0 {
			cfg.StartupTimeout = d
		}
	}
}

func newContainerConfig(opts ...ContainerOption) ContainerConfig {
	cfg := ContainerConfig{
		Image:          DefaultImage,
		Name:           DefaultName,
		User:           "postgres",
		Password:       "password",
		Database:       "postgres",
		StartupTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// request builds the container request. Postgres logs the ready line twice,
// the first one belongs to the init phase.
func (cfg ContainerConfig) request() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image: cfg.Image,
		Name:  cfg.Name,
		Env: map[string]string{
			"POSTGRES_USER":     cfg.User,
			"POSTGRES_PASSWORD": cfg.Password,
			"POSTGRES_DB":       cfg.Database,
		},
		ExposedPorts: []string{string(pgPort)},
		Cmd:          []string{"postgres", "-c", "fsync=off"},
		WaitingFor: wait.ForLog(readyLog).
			WithOccurrence(2).
			WithStartupTimeout(cfg.StartupTimeout),
	}
}

// dbURL returns the connection URL for the database at host:port.
func (cfg ContainerConfig) dbURL(host, port string) string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%s", host, port),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}

// Container is a running postgres test container.
type Container struct {
	testcontainers.Container
	cfg ContainerConfig
}

// StartContainer starts the container or attaches to a running one with the same name.
func StartContainer(ctx context.Context, opts ...ContainerOption) (*Container, error) {
	cfg := newContainerConfig(opts...)
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: cfg.request(),
		Started:          true,
		Reuse:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", cfg.Name, err)
	}
	return &Container{Container: c, cfg: cfg}, nil
}

// URL returns the connection URL as seen from the test process.
func (c *Container) URL(ctx context.Context) (string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := c.MappedPort(ctx, pgPort)
	if err != nil {
		return "", err
	}
	return c.cfg.dbURL(host, port.Port()), nil
}
