package kernel

// Policy selects which Runnable process a CPU should dispatch next
// (spec.md §4.4). Select is always called with the table's lock already
// held by the caller; implementations must not lock or block.
type Policy interface {
	// Select returns the chosen process, or nil if no slot is Runnable.
	Select(t *ProcessTable) *Process
	// Kind identifies the policy for introspection and logging.
	Kind() PolicyKind
}

// NewPolicy returns the Policy implementation for kind. This is the
// runtime factory spec.md §9 prefers over the source's compile-time
// #ifdef selection (see SPEC_FULL.md §4, REDESIGN FLAGS "Policy as
// strategy"), modeled on plib.NewInspector's switch-and-return shape.
func NewPolicy(kind PolicyKind) Policy {
	switch kind {
	case PolicyFCFS:
		return fcfsPolicy{}
	case PolicyPBS:
		return pbsPolicy{}
	case PolicyMLFQ:
		return mlfqPolicy{}
	default:
		return rrPolicy{}
	}
}
