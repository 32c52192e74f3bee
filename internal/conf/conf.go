package conf

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmr-tortoise/gantry/internal/locator"
	"github.com/mmr-tortoise/gantry/internal/model"
)

// Option keys accepted by the server constructor. The assembled
// configuration never contains a key outside this set plus KeyApp and
// KeyBind.
const (
	// KeyApp holds the resolved application callable. Always injected by
	// Assemble, overwriting any stale raw value.
	KeyApp = "wsgi_app"

	// KeyBind holds the parsed bind target. Always injected by Assemble,
	// overwriting the raw flag string.
	KeyBind = "bind_addr"

	KeyServerName           = "server_name"
	KeyThreads              = "numthreads"
	KeyMaxThreads           = "max"
	KeyTimeout              = "timeout"
	KeyShutdownTimeout      = "shutdown_timeout"
	KeyRequestQueueSize     = "request_queue_size"
	KeyAcceptedQueueSize    = "accepted_queue_size"
	KeyAcceptedQueueTimeout = "accepted_queue_timeout"
)

// internalPrefix marks record entries that exist for the CLI's own use and
// must never reach the server constructor.
const internalPrefix = "_"

// KeyChdir is the CLI-only working-directory override.
const KeyChdir = internalPrefix + "chdir"

// Flags is the sparse record of parsed CLI options. Only options the user
// explicitly supplied are present (the CLI-internal entries and the raw
// bind string excepted); absence is the "unset" marker.
type Flags map[string]any

// Assemble produces the configuration map handed to the server
/// constructor: every non-internal, non-nil entry of the flag record, plus
// the resolved application under KeyApp and the parsed bind target under
// KeyBind. The injected values overwrite any raw entries under the same
// keys.
func Assemble(flags Flags, app locator.Application, bind model.BindTarget) map[string]any {
	config := make(map[string]any, len(flags)+2)
	for key, value := range flags {
		if strings.HasPrefix(key, internalPrefix) || value == nil {
			continue
		}
		config[key] = value
	}

	config[KeyApp] = app
	config[KeyBind] = bind
	return config
}

// optionRules maps supplied option keys to their validation constraints.
// Keys outside this set (and outside the injected KeyApp/KeyBind) are not
// CLI options and fail validation.
var optionRules = map[string]string{
	KeyBind:                 "omitempty",
	KeyServerName:           "omitempty",
	KeyThreads:              "gte=1",
	KeyMaxThreads:           "gte=1",
	KeyTimeout:              "gte=0",
	KeyShutdownTimeout:      "gte=0",
	KeyRequestQueueSize:     "gte=0",
	KeyAcceptedQueueSize:    "gte=0",
	KeyAcceptedQueueTimeout: "gte=0",
}

// validate is the shared validator instance for option constraints.
var validate = validator.New()

// Validate checks every supplied option of the flag record against its
// constraint. Internal entries are skipped; they never reach the server.
func Validate(flags Flags) error {
	for key, value := range flags {
		if strings.HasPrefix(key, internalPrefix) || value == nil {
			continue
		}
		rule, ok := optionRules[key]
		if !ok {
			return fmt.Errorf("unknown option %q", key)
		}
		if err := validate.Var(value, rule); err != nil {
			return fmt.Errorf("invalid value %v for option %q", value, key)
		}
	}
	return nil
}
