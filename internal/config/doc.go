// Package config provides configuration parsing for the signalstate CLI.
//
// The configuration is stored in signalstate.json or signalstate.yaml in
// the working directory or one of its parents. This package handles
// loading, saving, validating and applying it to the state engine.
//
// # Configuration File Structure
//
//	{
//	  "scheduler": "frame",
//	  "frameInterval": "16ms",
//	  "prodMode": false,
//	  "integrity": "warn",
//	  "log": {
//	    "level": "info",
//	    "format": "tint"
//	  },
//	  "inspector": {
//	    "address": "127.0.0.1:6060"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "signalstate"
//	  },
//	  "tracing": {
//	    "enabled": false
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Apply(logger)
package config
