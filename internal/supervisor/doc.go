// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package supervisor runs the long-lived parts of the reelmatch server under a
suture v4 supervisor tree.

The tree has two layers so that a failing pipeline never takes the HTTP
API down with it:

	RootSupervisor ("reelmatch")
	├── PipelineSupervisor ("pipeline-layer")
	│   ├── TrainService   (startup and scheduled training)
	│   └── ReloadService  (model events to hot reload)
	└── APISupervisor ("api-layer")
	    ├── HTTPServerService
	    └── CleanupService (auth failure buckets)

Crashed services are restarted with suture's failure decay and backoff.
Supervisor events are logged through sutureslog, bridged onto zerolog with
logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddPipelineService(services.NewTrainService(trainer, trainCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, ":8088", 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Serve(ctx)
*/
package supervisor
