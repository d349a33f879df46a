// Package hosting resolves the process-wide tenant isolation strategy.
//
// The mode is read from a single HOSTING_MODE environment variable at
// startup and stays fixed for the process lifetime. Downstream
// components (schema routing, migration coordination) branch on the
// resolved Mode value; nothing mutates it at runtime.
//
//	var cfg hosting.Config
//	config.MustLoad(&cfg)
//	mode, err := hosting.Parse(cfg)
//	if err != nil {
//		// misconfiguration is fatal at startup
//	}
package hosting
