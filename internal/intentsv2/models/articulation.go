package models

// Articulation is a set of child drafts for one intent. A nil list means the
// kind is not being written; a non-nil empty list clears it.
type Articulation struct {
	Aspects     []*Aspect
	Inputs      []*Input
	Choices     []*Choice
	Pitfalls    []*Pitfall
	Assumptions []*Assumption
	Qualities   []*Quality
	Examples    []*Example
}

// AspectRefs returns the aspect references carried by every supplied
// non-aspect list.
func (a Articulation) AspectRefs() []*int64 {
	var refs []*int64
	for _, in := range a.Inputs {
		refs = append(refs, in.AspectID)
	}
	for _, c := range a.Choices {
		refs = append(refs, c.AspectID)
	}
	for _, p := range a.Pitfalls {
		refs = append(refs, p.AspectID)
	}
	for _, as := range a.Assumptions {
		refs = append(refs, as.AspectID)
	}
	for _, q := range a.Qualities {
		refs = append(refs, q.AspectID)
	}
	for _, e := range a.Examples {
		refs = append(refs, e.AspectID)
	}
	return refs
}

// Empty reports whether no list was supplied.
func (a Articulation) Empty() bool {
	return a.Aspects == nil && a.Inputs == nil && a.Choices == nil && a.Pitfalls == nil &&
		a.Assumptions == nil && a.Qualities == nil && a.Examples == nil
}
