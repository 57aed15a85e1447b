package codegen

// jumpInfo summarizes, for whatever subtree a single visit call just
// lowered, whether a return or break occurred somewhere within it. The
// driver threads this explicitly through visit's return value instead of
// the transient mutable latches codegen.rs uses (propagate_return and
// propagate_break flipped back to false at the end of every visit,
// including the very visit that set them). See DESIGN.md's Open
// Question entry on this. Spec.md §9 explicitly sanctions either model
// as long as the observable guard-emission behavior in §8's scenarios
// holds, and a returned summary is the one that actually produces it.
type jumpInfo struct {
	mayReturn bool
	mayBreak  bool
}

func orJump(a, b jumpInfo) jumpInfo {
	return jumpInfo{
		mayReturn: a.mayReturn || b.mayReturn,
		mayBreak:  a.mayBreak || b.mayBreak,
	}
}
