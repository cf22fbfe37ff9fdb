// Package httpserver runs an http.Handler with configurable timeouts and
// graceful shutdown, and provides liveness and readiness handlers.
//
// Run binds the listener first, closes Ready and then serves until the
// context is canceled, SIGINT or SIGTERM arrives, or Shutdown is called.
// Listening on ":0" is supported; Addr reports the bound address.
//
//	srv := httpserver.New(httpserver.DefaultConfig(), log)
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthCheckHandler(log))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Listen failures are wrapped with ErrStart and shutdown failures with
// ErrShutdown.
package httpserver
