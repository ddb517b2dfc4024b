/*
Package observability turns session lifecycle hooks into Prometheus metrics and
structured log records.

Both are plain domain.Hooks values, so a host picks either or combines them:

	hooks := domain.CombineHooks(observability.LoggingHooks(logger), metrics.Hooks())
*/
package observability
