// Package bootstrap prepares the broker configuration and hands the
// container over to the broker.
//
// A run goes through fixed phases:
//
//	discover → merge → read template → render → write config → launch
//
// Every phase before the launch is side-effect free apart from logging and
// the persisted broker id, so Prepare can be used on its own to preview the
// rendered configuration.
//
// # Quick Start
//
//	b := bootstrap.New(settings, discoverer, bootstrap.WithLogger(log))
//	os.Exit(b.Run(ctx))
//
// Run returns the process exit code: 1 when the configuration cannot be
// produced or the broker cannot be started, otherwise the broker's own exit
// code.
package bootstrap
