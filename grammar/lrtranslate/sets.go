package lrtranslate

// FirstSets holds the FIRST(X) set for every grammar symbol (terminal and
// non-terminal) of a flattened grammar, plus which non-terminals are
// nullable. Grounded on the FIRST computation internal/ictiobus/grammar/
// grammar_test.go exercises (Test_Grammar_FIRST), generalized here to work
// directly over Output's flat productions instead of the teacher's
// Grammar.Productions accessor (not present in the retrieved source).
type FirstSets struct {
	sets     map[string]map[string]bool
	nullable map[string]bool
}

// Of returns FIRST(name) as a sorted-independent set; callers that need a
// stable order should sort the result themselves.
func (f FirstSets) Of(name string) []string {
	m := f.sets[name]
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Nullable reports whether non-terminal name can derive the empty string.
func (f FirstSets) Nullable(name string) bool {
	return f.nullable[name]
}

// FirstOfSequence computes FIRST of a symbol sequence, honoring nullability
// of leading symbols exactly as FIRST(Y1 Y2 ... Yk) is defined.
func (f FirstSets) FirstOfSequence(syms Production) map[string]bool {
	out := map[string]bool{}
	for _, s := range syms {
		for t := range f.setFor(s) {
			out[t] = true
		}
		if !f.nullableOf(s) {
			return out
		}
	}
	out[""] = true // epsilon: the whole sequence is nullable
	return out
}

func (f FirstSets) setFor(s Symbol) map[string]bool {
	if s.Terminal {
		return map[string]bool{s.String(): true}
	}
	return f.sets[s.Name]
}

func (f FirstSets) nullableOf(s Symbol) bool {
	if s.Terminal {
		return false
	}
	return f.nullable[s.Name]
}

// FollowSets holds FOLLOW(A) for every non-terminal, used by SLR(1) table
// construction to decide reduce actions.
type FollowSets struct {
	sets map[string]map[string]bool
}

func (f FollowSets) Of(name string) map[string]bool {
	return f.sets[name]
}

// ComputeFollow computes FOLLOW sets by fixed-point iteration over the
// classic three FOLLOW rules, seeding FOLLOW(entry) with end-of-input.
func ComputeFollow(rules map[string][]Production, first FirstSets, entry string) FollowSets {
	out := FollowSets{sets: map[string]map[string]bool{}}
	for head := range rules {
		out.sets[head] = map[string]bool{}
	}
	out.sets[entry][EndOfInput] = true

	changed := true
	for changed {
		changed = false
		for head, prods := range rules {
			for _, p := range prods {
				for i, s := range p {
					if s.Terminal {
						continue
					}
					rest := p[i+1:]
					restFirst := first.FirstOfSequence(rest)
					for t := range restFirst {
						if t == "" {
							continue
						}
						if !out.sets[s.Name][t] {
							out.sets[s.Name][t] = true
							changed = true
						}
					}
					if restFirst[""] || len(rest) == 0 {
						for t := range out.sets[head] {
							if !out.sets[s.Name][t] {
								out.sets[s.Name][t] = true
								changed = true
							}
						}
					}
				}
			}
		}
	}
	return out
}

// ComputeFirst computes FIRST sets for every non-terminal in rules by
// fixed-point iteration, the standard worklist-free dragon-book algorithm.
func ComputeFirst(rules map[string][]Production) FirstSets {
	f := FirstSets{sets: map[string]map[string]bool{}, nullable: map[string]bool{}}
	for head := range rules {
		f.sets[head] = map[string]bool{}
	}

	changed := true
	for changed {
		changed = false
		for head, prods := range rules {
			for _, p := range prods {
				if len(p) == 0 {
					if !f.nullable[head] {
						f.nullable[head] = true
						changed = true
					}
					continue
				}
				allNullableSoFar := true
				for _, s := range p {
					if s.Terminal {
						if !f.sets[head][s.String()] {
							f.sets[head][s.String()] = true
							changed = true
						}
						allNullableSoFar = false
						break
					}
					for t := range f.sets[s.Name] {
						if !f.sets[head][t] {
							f.sets[head][t] = true
							changed = true
						}
					}
					if !f.nullable[s.Name] {
						allNullableSoFar = false
						break
					}
				}
				if allNullableSoFar && !f.nullable[head] {
					f.nullable[head] = true
					changed = true
				}
			}
		}
	}
	return f
}
