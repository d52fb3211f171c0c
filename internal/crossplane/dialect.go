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

// ScopeLegacyCluster is the spec.scope value signalling that a v2-style
// definition keeps claim mediation.
const ScopeLegacyCluster = "LegacyCluster"

// ScopeNamespaced is the spec.scope value for directly managed,
// namespaced composites.
const ScopeNamespaced = "Namespaced"

// Classify derives the dialect of a definition from structural signals.
// An absent scope declaration marks the legacy claim family; within the
// newer family, LegacyCluster keeps claim mediation and any other scope
// value means direct management. Pure and total: every input maps to
// exactly one dialect.
func Classify(d *Definition) Dialect {
	if d.Scope == "" {
		return DialectLegacyClaim
	}
	switch d.Scope {
	case ScopeLegacyCluster:
		return DialectLegacyCluster
	case ScopeNamespaced:
		return DialectDirectNamespaced
	default:
		return DialectDirectCluster
	}
}

// ProfileFor expands a dialect into the switches downstream components
// consume. Claims are always namespaced objects, so both claim-mediated
// dialects require a namespace parameter even when the composite itself
// is cluster-scoped.
func ProfileFor(dialect Dialect) Profile {
	switch dialect {
	case DialectLegacyClaim, DialectLegacyCluster:
		return Profile{
			Dialect:              dialect,
			NeedsNamespace:       true,
			HasClaimFields:       true,
			SettingsNestingDepth: 0,
		}
	case DialectDirectNamespaced:
		return Profile{
			Dialect:              dialect,
			NeedsNamespace:       true,
			SettingsNestingDepth: 1,
		}
	default:
		return Profile{
			Dialect:              DialectDirectCluster,
			SettingsNestingDepth: 1,
		}
	}
}
