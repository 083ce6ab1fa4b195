package main

import (
	"context"

	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/session"
)

// Adapters for HealthHandler
type sessionHealthAdapter struct {
	store session.Store
}

func (a *sessionHealthAdapter) Name() string {
	return "session_" + a.store.Backend()
}

func (a *sessionHealthAdapter) Check(ctx context.Context) error {
	return a.store.Ping(ctx)
}

// rendererHealthAdapter draws methane, which fails when the font cannot be
// loaded.
type rendererHealthAdapter struct {
	renderer molecule.ImageRenderer
	probe    *molecule.Molecule
}

func newRendererHealthAdapter(r molecule.ImageRenderer) *rendererHealthAdapter {
	probe, _ := molecule.Parse("C")
	return &rendererHealthAdapter{renderer: r, probe: probe}
}

func (a *rendererHealthAdapter) Name() string {
	return "renderer"
}

func (a *rendererHealthAdapter) Check(ctx context.Context) error {
	_, err := a.renderer.RenderPNG(ctx, a.probe)
	return err
}
