// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

/*
Package supervisor runs the recommender's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("digestrec")
	├── RecommendSupervisor ("recommend-layer")
	│   └── RecommendService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if metrics.enabled)

A crashing metrics listener is restarted without touching an in-flight
recommendation run, and a failing run is restarted with suture's backoff
without taking /healthz down.

Supervisor events are logged through zerolog via sutureslog and the
logging.NewSlogLogger adapter:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddRecommendService(services.NewRecommendService(engine, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{}, logger))
	err = tree.Serve(ctx)

In run-once mode RecommendService returns suture.ErrDoNotRestart after its
single pass and reports the outcome through its OnComplete callback, which
cmd/recommender uses to cancel the tree.
*/
package supervisor
