// Package buildinfo exposes build-time information for turbine.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/turbine-go/internal/infra/buildinfo.Version=v0.4.0 \
//	  -X github.com/yndnr/turbine-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// GoVersion falls back to the running toolchain when not injected.
package buildinfo
