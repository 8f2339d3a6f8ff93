// Package hostinfo provides host introspection for the HostPulse status page.
//
// Host state is read through the narrow [Probe] capability so that handlers
// can be tested with fixed values:
//
//   - [SystemProbe]: reads the live host via gopsutil
//   - [StaticProbe]: returns a fixed [Info], for tests and demos
//
// Users of the hostpulse library normally rely on the default SystemProbe and
// only reach for this package to inject a custom probe.
package hostinfo
