/*
Copyright 2026 The Crossplane Catalog Ingestor contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package crossplane

import (
	"sort"
	"strings"
)

// MatchCompositions associates every composition with the definitions
// whose effective composite type it produces, appending composition
// names without duplicates. Definitions without a resolvable composite
// type are left untouched; a definition with zero matches simply ends
// up with an empty composition list.
func MatchCompositions(defs []*Definition, comps []*Composition) {
	for _, d := range defs {
		target := d.EffectiveCompositeType()
		if target == nil {
			continue
		}
		seen := make(map[string]bool, len(d.Compositions))
		for _, name := range d.Compositions {
			seen[name] = true
		}
		for _, c := range comps {
			if !matchesType(c.CompositeTypeRef, *target) {
				continue
			}
			if seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			d.Compositions = append(d.Compositions, c.Name)
		}
		sort.Strings(d.Compositions)
	}
}

// matchesType compares the composition's declared output against a
// composite type. Kinds are compared both case-sensitively and
// case-insensitively: user-authored compositions are inconsistent about
// kind casing and either spelling is accepted.
func matchesType(got, want CompositeTypeRef) bool {
	if got.APIVersion != want.APIVersion {
		return false
	}
	return got.Kind == want.Kind || strings.EqualFold(got.Kind, want.Kind)
}
