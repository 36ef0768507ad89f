// Package bootstrap runs a binary built from lifecycle components.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(storageComponent)
//	app.RegisterComponent(serverComponent)
//	app.OnReady(announce)
//	err = app.Run(ctx)
//
// Components start in registration order and stop in reverse on SIGINT,
// SIGTERM or context cancellation.
package bootstrap
