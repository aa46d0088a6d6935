package pagescmd

// FeatureGates exposes runtime feature toggles required by page command handlers.
// Callers can inject closures wired to pagetree.Config.Features to avoid tight coupling.
type FeatureGates struct {
	// SchedulingEnabled should return true when publish scheduling is enabled.
	SchedulingEnabled func() bool
	// WorkflowEnabled should return true when review workflow transitions are enabled.
	WorkflowEnabled func() bool
}

func (g FeatureGates) schedulingEnabled() bool {
	if g.SchedulingEnabled == nil {
		return true
	}
	return g.SchedulingEnabled()
}

func (g FeatureGates) workflowEnabled() bool {
	if g.WorkflowEnabled == nil {
		return true
	}
	return g.WorkflowEnabled()
}
