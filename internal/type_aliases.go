package internal

import "github.com/lychee-technology/eureka"

// TypeAliasVersion identifies the revision of the legacy type alias table.
const TypeAliasVersion = 1

// typeAlias maps a legacy type tag onto a base constraint plus any extra
// constraints that keep its meaning.
type typeAlias struct {
	base  ConstraintName
	extra []ConstraintName
}

var legacyTypeAliases = map[string]typeAlias{
	string(eureka.PrimitiveInteger):  {base: ConstraintNumber, extra: []ConstraintName{ConstraintInteger}},
	string(eureka.PrimitiveFloat):    {base: ConstraintNumber},
	string(eureka.PrimitiveDateTime): {base: ConstraintDate},
}

// NormalizeTypeTag resolves a legacy type tag to its canonical base type and
// the constraints appended after it. Tags without an alias map to
// themselves.
func NormalizeTypeTag(tag string) (string, []eureka.Constraint) {
	alias, ok := legacyTypeAliases[tag]
	if !ok {
		return tag, nil
	}
	extra := make([]eureka.Constraint, 0, len(alias.extra))
	for _, name := range alias.extra {
		extra = append(extra, eureka.C(string(name)))
	}
	return string(alias.base), extra
}

// NormalizeValidations remaps every constraint whose name is a legacy type
// tag. An aliased tag is replaced by its base type and extra constraints. A
// constraint without parameters that is already present earlier in the list
// is dropped.
func NormalizeValidations(list []eureka.Constraint) []eureka.Constraint {
	out := make([]eureka.Constraint, 0, len(list)+1)
	seen := make(map[string]struct{}, len(list))
	push := func(c eureka.Constraint) {
		if len(c.Params) == 0 {
			if _, dup := seen[c.Name]; dup {
				return
			}
			seen[c.Name] = struct{}{}
		}
		out = append(out, c)
	}
	for _, c := range list {
		if _, ok := legacyTypeAliases[c.Name]; ok && len(c.Params) == 0 {
			base, extra := NormalizeTypeTag(c.Name)
			push(eureka.C(base))
			for _, e := range extra {
				push(e)
			}
			continue
		}
		push(c)
	}
	return out
}
