// Package config provides configuration parsing for toastd.
//
// The configuration is stored in toastd.json in the working directory.
// Every field has a default, so the file is optional. Environment
// variables prefixed with TOASTD_ override file values.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "port": 8080,
//	    "host": "localhost",
//	    "shutdownTimeout": "10s"
//	  },
//	  "page": {
//	    "template": "./page.html"
//	  },
//	  "toast": {
//	    "containerClass": "toast-container",
//	    "toastClass": "toast",
//	    "animationClass": "fade-slide",
//	    "lifetime": "3s"
//	  },
//	  "live": {
//	    "idleTimeout": "1m",
//	    "queueSize": 256,
//	    "heartbeat": "25s",
//	    "maxSessions": 10000
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Environment
//
//	TOASTD_PORT, TOASTD_HOST, TOASTD_SHUTDOWN_TIMEOUT, TOASTD_TEMPLATE,
//	TOASTD_TOAST_LIFETIME, TOASTD_IDLE_TIMEOUT, TOASTD_QUEUE_SIZE,
//	TOASTD_HEARTBEAT, TOASTD_MAX_SESSIONS, TOASTD_METRICS_ENABLED,
//	TOASTD_METRICS_PATH, TOASTD_LOG_LEVEL, TOASTD_LOG_FORMAT
//
// # Usage
//
//	cfg, err := config.Resolve(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
