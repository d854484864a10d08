// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMySQLImage is the MySQL image used for cache backend tests.
	DefaultMySQLImage = "mysql:8.4"

	mysqlPort     = "3306/tcp"
	mysqlDatabase = "s2cache"
	mysqlPassword = "digestrec"
)

// MySQLContainer is a running MySQL server.
type MySQLContainer struct {
	testcontainers.Container
	DSN string
}

// NewMySQLContainer starts MySQL with an empty s2cache database.
func NewMySQLContainer(ctx context.Context) (*MySQLContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultMySQLImage,
		ExposedPorts: []string{mysqlPort},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      mysqlDatabase,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(mysqlPort),
			wait.ForLog("ready for connections").WithOccurrence(2),
		).WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create mysql container: %w", err)
	}

	endpoint, err := mappedEndpoint(ctx, container, mysqlPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("resolve mysql endpoint: %w", err)
	}

	return &MySQLContainer{
		Container: container,
		DSN:       fmt.Sprintf("root:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", mysqlPassword, endpoint, mysqlDatabase),
	}, nil
}
