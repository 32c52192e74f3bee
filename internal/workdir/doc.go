// Package workdir prepares the process environment for application
// resolution: it changes the working directory and maintains the module
// search path the locator searches for plugin files.
//
// The working directory change is a real process-wide side effect (user
// applications rely on relative paths), but the search path is an explicit
// value returned to the caller and threaded into the resolver, never
// process-global state. The initial search path comes from the
// GANTRY_MODULE_PATH environment variable, playing the role an inherited
// interpreter path would.
package workdir
