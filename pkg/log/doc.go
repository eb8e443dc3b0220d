/*
Package log provides structured logging for Roost using zerolog.

The log package wraps the zerolog library to provide JSON-structured
logging with component-specific loggers, configurable log levels, and
helper functions for common logging patterns. All logs include
timestamps and support filtering by severity level.

# Usage

Initialize once at startup:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

Components take a scoped child logger and attach structured fields:

	logger := log.WithComponent("scheduler")
	logger.Info().
		Str("pod_id", pod.ID).
		Str("node_id", node.ID).
		Int("cpu", pod.CPURequest).
		Msg("pod scheduled")

JSON output (production, machine-parseable):

	{"level":"info","component":"scheduler","pod_id":"web-1",
	 "node_id":"node-a","cpu":3,"time":"2026-08-25T10:30:00Z",
	 "message":"pod scheduled"}

Console output (development, human-readable):

	10:30AM INF pod scheduled component=scheduler pod_id=web-1

# Child Logger Helpers

  - WithComponent: tags every event with the emitting subsystem
  - WithNodeID / WithPodID: tags events with the entity they concern

Background loops log failures at error level and continue; nothing in
Roost treats a log write as fallible control flow. Fatal is reserved
for unrecoverable startup errors in main.
*/
package log
