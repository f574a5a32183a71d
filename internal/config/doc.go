// Package config provides configuration parsing for weft projects.
//
// The configuration is stored in weft.json at the project root, or in
// weft.yaml with the same keys when no weft.json exists. Every field is
// optional; missing values take the defaults from New.
//
// # Configuration File Structure
//
//	{
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "debug": true,
//	    "dispatchRate": 100
//	  },
//	  "render": {
//	    "maxFlattenDepth": 10,
//	    "maxAttributeBytes": 1048576,
//	    "frameInterval": "16ms"
//	  },
//	  "snapshot": {
//	    "backend": "s3",
//	    "bucket": "ui-goldens",
//	    "prefix": "weft/",
//	    "region": "eu-west-1"
//	  },
//	  "metrics": {
//	    "namespace": "weft"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
