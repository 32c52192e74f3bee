// Package conf assembles the configuration handed to the server
// constructor from the sparse record of explicitly supplied CLI flags.
//
// "Not supplied" is modeled as key absence, never as a reused default
// value, so the engine cannot confuse "user chose the default" with "user
// said nothing". Entries whose key carries the internal-use prefix are
// CLI-only (the working-directory override) and are stripped before the
// configuration reaches the constructor.
package conf
