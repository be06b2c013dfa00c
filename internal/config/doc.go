// Package config provides configuration parsing for reactive projects.
//
// The configuration is stored in reactive.json at the project root. Every
// field is optional; a project without the file runs on defaults.
//
// # Configuration File Structure
//
//	{
//	  "scenarios": ["scenarios", "testdata/*.yaml"],
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "inspector": {
//	    "host": "localhost",
//	    "port": 7070
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "reactive"
//	  },
//	  "watch": false
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.Address())
package config
