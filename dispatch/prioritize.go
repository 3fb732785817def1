package dispatch

import (
	"reflect"
	"slices"
	"strings"

	cmed "github.com/next-trace/scg-mediator/contract/mediator"
)

type candidate struct {
	value      any
	typ        reflect.Type
	affinity   cmed.Affinity
	overridden bool
}

// Prioritize deduplicates and orders handlers resolved for one contract.
//
// A handler whose type is the same as, or embedded in, another candidate's type
// is overridden and dropped. Survivors are ordered relative to message: same
// affinity group first; then handlers whose location is an ancestor of (or
// equal to) the message's location, longest first. Ties keep their input order.
// Fewer than two handlers are returned unchanged.
func Prioritize(handlers []any, message any) []any {
	if len(handlers) < 2 {
		return handlers
	}

	target := AffinityOf(message)

	cands := make([]*candidate, len(handlers))
	for i, h := range handlers {
		cands[i] = &candidate{value: h, typ: reflect.TypeOf(h), affinity: AffinityOf(h)}
	}

	removeOverridden(cands)

	survivors := slices.DeleteFunc(cands, func(c *candidate) bool { return c.overridden })
	slices.SortStableFunc(survivors, func(x, y *candidate) int { return compareCandidates(target, x, y) })

	out := make([]any, len(survivors))
	for i, c := range survivors {
		out[i] = c.value
	}

	return out
}

func removeOverridden(cands []*candidate) {
	for i := 0; i < len(cands)-1; i++ {
		for j := i + 1; j < len(cands); j++ {
			if cands[i].overridden || cands[j].overridden {
				continue
			}

			switch {
			case overrides(cands[j].typ, cands[i].typ):
				cands[i].overridden = true
			case overrides(cands[i].typ, cands[j].typ):
				cands[j].overridden = true
			}
		}
	}
}

// overrides reports whether specific replaces general: the same declared type,
// or a struct embedding general at any depth. Func adapters declare nothing and
// never override each other.
func overrides(specific, general reflect.Type) bool {
	s, g := baseType(specific), baseType(general)
	if s == nil || g == nil || s.Kind() == reflect.Func || g.Kind() == reflect.Func {
		return false
	}

	if s == g {
		return true
	}

	return embeds(s, g, map[reflect.Type]bool{})
}

func embeds(t, target reflect.Type, visited map[reflect.Type]bool) bool {
	t = baseType(t)
	if t.Kind() != reflect.Struct || visited[t] {
		return false
	}

	visited[t] = true

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		if baseType(f.Type) == target || embeds(f.Type, target, visited) {
			return true
		}
	}

	return false
}

func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

func compareCandidates(target cmed.Affinity, x, y *candidate) int {
	xg := x.affinity.Group == target.Group
	yg := y.affinity.Group == target.Group

	switch {
	case xg && !yg:
		return -1
	case !xg && yg:
		return 1
	case !xg && !yg:
		return 0
	}

	xp := isLocationPrefix(x.affinity.Location, target.Location)
	yp := isLocationPrefix(y.affinity.Location, target.Location)

	switch {
	case xp && !yp:
		return -1
	case !xp && yp:
		return 1
	case !xp && !yp:
		return 0
	}

	return len(y.affinity.Location) - len(x.affinity.Location)
}

// isLocationPrefix reports whether loc is target or one of its ancestors.
func isLocationPrefix(loc, target string) bool {
	if loc == "" || loc == target {
		return true
	}

	return strings.HasPrefix(target, loc+"/")
}

// AffinityOf returns v's declared Affinity, or one inferred from its package
// path: the group is the module-like root ("host/owner/repo" when the first
// element is a domain, otherwise the first element) and the location is the
// remaining path.
func AffinityOf(v any) cmed.Affinity {
	if a, ok := v.(cmed.Affine); ok {
		return a.Affinity()
	}

	t := baseType(reflect.TypeOf(v))
	if t == nil {
		return cmed.Affinity{}
	}

	return affinityFromPkgPath(t.PkgPath())
}

func affinityFromPkgPath(pkg string) cmed.Affinity {
	if pkg == "" {
		return cmed.Affinity{}
	}

	parts := strings.Split(pkg, "/")

	root := 1
	if strings.Contains(parts[0], ".") {
		root = min(3, len(parts))
	}

	return cmed.Affinity{
		Group:    strings.Join(parts[:root], "/"),
		Location: strings.Join(parts[root:], "/"),
	}
}
