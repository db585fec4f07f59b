// Package registry owns the named channels of an application.
//
// A Registry is built from a config.Config. Handler declarations are
// fanned out to every channel they name (handlers without channels go to
// the default channel), each channel's handlers are instantiated through
// a strategy.Strategy, and one logger.Logger per channel is indexed by
// name. All channels share one processor pipeline.
//
//	reg, err := registry.New(cfg, registry.WithResolver(services))
//	if err != nil {
//	    return err
//	}
//	defer reg.Close()
//
//	log, err := reg.GetLogger("billing")
//
// Channels can also be created and closed at runtime. Lookups take a read
// lock; opening and closing take the write lock.
package registry
