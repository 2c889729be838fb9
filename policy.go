package utgard

// pickTiling decides tiled versus linear storage for a new resource.
//
// The rules form an ordered policy table: each of the first five rules can
// force linear storage, and their order matters because the modifier rules
// refine the earlier bind-flag relaxations. A resource that survives them all
// is tiled unless tiling is disabled by the screen's debug switch; render
// targets and depth/stencil surfaces tile even then.
//
// The second result reports whether level dimensions must be rounded to the
// 16x16 tiling granularity, which is also required for untiled render
// targets and depth/stencil surfaces.
func pickTiling(tmpl *ResourceTemplate, modifiers []Modifier, disableTiling bool) (tiled, alignDims bool) {
	hasUserModifiers := len(modifiers) > 0 &&
		!(len(modifiers) == 1 && modifiers[0] == ModifierInvalid)

	forceLinear := false

	// Vertex/index/constant buffers are one texel high and never tiled.
	if tmpl.Target == TargetBuffer {
		forceLinear = true
	}

	if tmpl.Bind&(BindLinear|BindScanout) != 0 {
		forceLinear = true
	}

	// No preference expressed and the buffer will cross process boundaries:
	// fall back to linear so any consumer can read it.
	if !hasUserModifiers && tmpl.Bind&BindShared != 0 {
		forceLinear = true
	}

	if findModifier(modifiers, ModifierLinear) {
		forceLinear = true
	}

	if hasUserModifiers && !findModifier(modifiers, ModifierTiled16x16) {
		forceLinear = true
	}

	isRenderable := tmpl.Bind&(BindRenderTarget|BindDepthStencil) != 0

	tiled = !forceLinear && (!disableTiling || isRenderable)
	alignDims = tiled || isRenderable
	return tiled, alignDims
}
