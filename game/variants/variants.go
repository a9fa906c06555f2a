// Package variants wires the built-in game variants into an engine registry.
package variants

import (
	"fmt"

	"github.com/wricardo/tmge/game/candycrush"
	"github.com/wricardo/tmge/game/engine"
	"github.com/wricardo/tmge/game/tetris"
)

// Builtin lists the factories for every variant shipped with the engine
var Builtin = map[engine.Variant]engine.Factory{
	engine.VariantTetris:     tetris.New,
	engine.VariantCandyCrush: candycrush.New,
}

// NewRegistry returns a registry holding every built-in variant
func NewRegistry() (*engine.Registry, error) {
	registry := engine.NewRegistry()
	for variant, factory := range Builtin {
		if err := registry.Register(variant, factory); err != nil {
			return nil, fmt.Errorf("registering %s: %w", variant, err)
		}
	}
	return registry, nil
}
