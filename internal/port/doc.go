// Package port implements bind-target availability probing for the
// gantry CLI.
//
// Before the server engine is constructed, the probe checks that the
// requested bind target can plausibly be bound: TCP ports are tested with
// net.Listen, and unix socket paths are checked for live listeners or
// stale socket files left by a previous process. Failing fast here turns a
// late engine bind error into an immediate diagnostic with its own exit
// code.
//
// The probe asks the operating system directly (net.Listen / net.Dial)
// rather than parsing /proc/net/* or shelling out to external commands,
// which may require elevated permissions.
package port
