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

// DefaultElasticsearchImage is a single-node Elasticsearch without security.
const DefaultElasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.15.3"

const esPort = "9200/tcp"

// ElasticsearchContainer is a running single-node cluster.
type ElasticsearchContainer struct {
	testcontainers.Container
	URL string
}

// NewElasticsearchContainer starts a single-node cluster with security off.
func NewElasticsearchContainer(ctx context.Context) (*ElasticsearchContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultElasticsearchImage,
		ExposedPorts: []string{esPort},
		Env: map[string]string{
			"discovery.type":         "single-node",
			"xpack.security.enabled": "false",
			"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
		},
		WaitingFor: wait.ForHTTP("/_cluster/health").
			WithPort(esPort).
			WithStartupTimeout(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch container: %w", err)
	}

	endpoint, err := mappedEndpoint(ctx, container, esPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("resolve elasticsearch endpoint: %w", err)
	}
	return &ElasticsearchContainer{Container: container, URL: "http://" + endpoint}, nil
}
