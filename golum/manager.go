package golum

import "github.com/tredeske/u/uconfig"

// placeholder for disabled components
type Disabled struct{}

// Manager is the lifecycle interface golum drives every registered
// component type through.
type Manager interface {
	NewGolum(name string, c *uconfig.Section) (err error)
	StartGolum(name string) (err error)
	StopGolum(name string)
	ReloadGolum(name string, c *uconfig.Section) (err error)
	HelpGolum(name string, help *uconfig.Help)
}

// add a component lifecycle manager for the named realoadable type
//
// typ corresponds to the 'type' field in the YAML
//
// the prototype does not need to be initialized - it just needs to be in
// a state where the Reload func is usable.
//
// example:
//
//	init() {
//	    golum.AddReloadable("name", &ReloadableThing{})
//	}
func AddReloadable(typ string, prototype Reloadable) {
	if _, exists := managers_[typ]; exists {
		panic("Duplicate golum manager installed: " + typ)
	}
	managers_[typ] = &reloadableMgr_{Prototype: prototype}
}

// reloadableMgr_ adapts a bare Reloadable prototype (as registered by
// AddReloadable) into a full Manager, the way a hand-written AutoManager
// would: NewGolum performs the first Reload and registers it, Start/Stop
// come from the AutoReloadable mixin, and HelpGolum delegates to the
// prototype only if it chooses to implement Helper.
type reloadableMgr_ struct {
	AutoReloadable
	Prototype Reloadable
}

func (this *reloadableMgr_) NewGolum(name string, c *uconfig.Section) (err error) {
	return this.FirstLoad(name, c, this.Prototype)
}

func (this *reloadableMgr_) HelpGolum(name string, help *uconfig.Help) {
	if h, ok := this.Prototype.(Helper); ok {
		h.HelpGolum(name, help)
	}
}
