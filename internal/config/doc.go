// Package config provides configuration parsing for tipd.
//
// The configuration is stored in tooltip.json. Fields left out of the file
// keep their defaults.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "addr": ":8080",
//	    "readTimeout": "60s",
//	    "writeTimeout": "10s",
//	    "heartbeatInterval": "30s",
//	    "maxMessageBytes": 65536,
//	    "allowedOrigins": ["https://app.example.com"]
//	  },
//	  "defaults": {
//	    "padding": 4,
//	    "side": "bottom",
//	    "showOn": "hover",
//	    "borderRadius": 5,
//	    "class": "dark",
//	    "arrow": true
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "tooltip",
//	    "path": "/metrics"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
