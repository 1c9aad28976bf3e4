package core

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Phase names a step of the module lifecycle.
type Phase string

// Lifecycle phases, in the order a module goes through them.
const (
	PhaseConfigure Phase = "configuring"
	PhaseProvision Phase = "provisioning"
	PhaseValidate  Phase = "validating"
	PhaseStart     Phase = "starting"
)

// Configurable modules receive their section of the configuration file
// before Provision. Modules without a section are not configured.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner modules apply defaults, look up shared services and register
// their own.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator modules check their provisioned state. Validate must not have
// side effects.
type Validator interface {
	Validate() error
}

// Starter modules begin serving: listeners, schedulers, tunnels.
type Starter interface {
	Start() error
}

// Stopper modules release what Start acquired. Modules are stopped in
// reverse start order.
type Stopper interface {
	Stop(ctx context.Context) error
}

// LifecycleError reports which module failed and in which phase.
type LifecycleError struct {
	Module ModuleID
	Phase  Phase
	Err    error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s module %s: %v", e.Phase, e.Module, e.Err)
}

func (e *LifecycleError) Unwrap() error { return e.Err }
