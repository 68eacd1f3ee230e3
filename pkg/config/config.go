// Package config holds the run options of the exporter and their
// validation. Validation fails fast, before any network call is made.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/anod/todoport/pkg/todoist"
)

// Environment variables recognized for credentials, matching the original
// exporter's surface.
const (
	EnvClientID = "MS_TODO_CLIENT_ID"
	EnvTenantID = "MS_TODO_TENANT_ID"
)

// DefaultAuthor is the AUTHOR column value when none is configured.
const DefaultAuthor = "Importer"

var (
	// ErrIncompatibleOptions marks option combinations that cannot be
	// honored together.
	ErrIncompatibleOptions = errors.New("incompatible options")

	// ErrMissingCredentials marks absent client credentials; it maps to the
	// auth exit code rather than the config one.
	ErrMissingCredentials = errors.New("missing credentials")
)

// Error is an invalid configuration value.
type Error struct {
	Option string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Option, e.Reason)
}

// Options is the full configuration surface of a run.
type Options struct {
	// Output is a file path in combined mode, a directory in split and
	// regroup modes.
	Output string

	ClientID string
	Tenant   string

	IncludeCompleted  bool
	IncludeChecked    bool
	NoChecklists      bool
	PrefixListName    bool
	PriorityOverrides string

	Split    bool   // one output file per source list
	Regroup  string // path to a previous combined export to re-partition
	Template bool   // use the Todoist template schema
	Author   string

	// Priorities is populated by Validate.
	Priorities todoist.PriorityMapping
}

// LoadEnv fills credentials from the environment (after an optional .env
// load) unless flags already set them.
func (o *Options) LoadEnv() {
	_ = godotenv.Load() // a missing .env file is fine

	if o.ClientID == "" {
		o.ClientID = os.Getenv(EnvClientID)
	}
	if o.Tenant == "" {
		o.Tenant = os.Getenv(EnvTenantID)
	}
	if o.Tenant == "" {
		o.Tenant = "common"
	}
}

// Validate checks option compatibility and resolves the priority mapping.
func (o *Options) Validate() error {
	if o.Split && o.Regroup != "" {
		return fmt.Errorf("%w: --split and --regroup are mutually exclusive", ErrIncompatibleOptions)
	}
	if o.PrefixListName && o.Template {
		return fmt.Errorf("%w: --prefix-list-name only applies to the legacy schema", ErrIncompatibleOptions)
	}
	if o.Output == "" {
		return &Error{Option: "output", Reason: "an output path is required"}
	}

	o.Priorities = todoist.DefaultPriorities()
	if o.PriorityOverrides != "" {
		if err := o.Priorities.ApplyOverrides(o.PriorityOverrides); err != nil {
			return &Error{Option: "--priority-map", Reason: err.Error()}
		}
	}

	if o.Author == "" {
		o.Author = DefaultAuthor
	}

	// Regroup works entirely offline and needs no credentials.
	if o.Regroup == "" && o.ClientID == "" {
		return fmt.Errorf("%w: set %s or pass --client-id", ErrMissingCredentials, EnvClientID)
	}
	return nil
}

// Schema returns the CSV schema selected by the options.
func (o *Options) Schema() todoist.Schema {
	if o.Template {
		return todoist.SchemaTemplate
	}
	return todoist.SchemaLegacy
}
