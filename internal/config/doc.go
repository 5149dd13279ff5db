// Package config defines the turbine configuration.
//
// Configuration is read from turbine.yaml at the repository root,
// overridden by TURBINE_* environment variables and command-line flags
// (see internal/infra/confloader):
//
//	run:
//	  concurrency: 4
//	  continue_on_error: false
//	tasks:
//	  - name: build
//	    command: go build ./...
//	  - name: test
//	    command: go test ./...
//	    depends_on: [build]
//	storage:
//	  engine: badger
//	  data_dir: .turbine/history
package config
