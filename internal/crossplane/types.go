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
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
)

// Dialect classifies how a composite resource definition is consumed.
// Every downstream component (form compiler, workflow and API document
// synthesizers) branches on it, so classification happens exactly once,
// in Classify.
type Dialect string

const (
	// DialectLegacyClaim is a v1-style definition without an explicit
	// scope. Provisioning always goes through a namespaced claim.
	DialectLegacyClaim Dialect = "legacy-claim"

	// DialectLegacyCluster is a v2-style definition that opted back into
	// claim mediation via scope LegacyCluster.
	DialectLegacyCluster Dialect = "legacy-cluster"

	// DialectDirectCluster is a v2-style definition whose composite
	// resources are managed directly at cluster scope.
	DialectDirectCluster Dialect = "direct-cluster"

	// DialectDirectNamespaced is a v2-style definition whose composite
	// resources are managed directly inside a namespace.
	DialectDirectNamespaced Dialect = "direct-namespaced"
)

// Profile carries the dialect-dependent switches shared by the form
// compiler and the synthesizers. It is derived from the Dialect and
// never constructed by hand outside tests.
type Profile struct {
	Dialect Dialect

	// NeedsNamespace is true when the provisioning form must ask for a
	// target namespace (claims and namespaced composites).
	NeedsNamespace bool

	// HasClaimFields is true when connection-secret and delete-policy
	// settings apply.
	HasClaimFields bool

	// SettingsNestingDepth is 0 when composition-selection settings sit
	// at the top of the settings group, 1 when they nest under a
	// crossplane configuration sub-object.
	SettingsNestingDepth int
}

// CompositeTypeRef identifies the composite type a definition or
// composition deals in.
type CompositeTypeRef struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
}

// ClusterRef records on which cluster an object was observed.
type ClusterRef struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

// SchemaVersion is one served schema revision of a definition.
type SchemaVersion struct {
	Name          string
	Served        bool
	Referenceable bool
	Schema        *apiextensionsv1.JSONSchemaProps
}

// Definition is the merged, cluster-spanning view of one composite
// resource definition. Name is the global key; after aggregation no two
// Definitions share a name.
type Definition struct {
	Name        string
	Group       string
	Kind        string
	Plural      string
	ClaimKind   string
	ClaimPlural string

	// Scope is the raw spec.scope value. Empty for v1-style definitions,
	// which predate the field.
	Scope string

	Versions []SchemaVersion

	// Clusters lists every cluster the definition was observed on, in
	// first-seen order, without duplicates.
	Clusters []ClusterRef

	// Compositions holds the names of compositions whose composite type
	// matches this definition. Populated by MatchCompositions.
	Compositions []string

	// StatusCompositeRef is the composite type reported by the live
	// status, when present.
	StatusCompositeRef *CompositeTypeRef

	// DerivedCompositeRef is the composite type derived from the declared
	// kind/group/first-version triple. Kept alongside StatusCompositeRef
	// so diagnostics can show both candidates.
	DerivedCompositeRef *CompositeTypeRef
}

// Composition is an auxiliary object declaring which composite type it
// can produce.
type Composition struct {
	Name             string
	CompositeTypeRef CompositeTypeRef
}

// CompanionSchema is the generated CRD that shares a definition's name
// and carries a richer structural schema per version.
type CompanionSchema struct {
	Name           string
	StorageVersion string
	Versions       map[string]*apiextensionsv1.JSONSchemaProps
}

// EffectiveCompositeType resolves the composite type used for
// composition matching: the live-status candidate when usable,
// otherwise the spec-derived one. Returns nil when neither source
// yields a type, in which case the definition is ingested with an empty
// composition list.
func (d *Definition) EffectiveCompositeType() *CompositeTypeRef {
	if d.StatusCompositeRef != nil && d.StatusCompositeRef.APIVersion != "" && d.StatusCompositeRef.Kind != "" {
		return d.StatusCompositeRef
	}
	if d.DerivedCompositeRef != nil && d.DerivedCompositeRef.APIVersion != "" && d.DerivedCompositeRef.Kind != "" {
		return d.DerivedCompositeRef
	}
	return nil
}

// ObservedOn reports whether the definition was already seen on the
// named cluster.
func (d *Definition) ObservedOn(cluster string) bool {
	for _, c := range d.Clusters {
		if c.Name == cluster {
			return true
		}
	}
	return false
}

// SchemaFor returns the structural schema to use for the given version,
// preferring the companion schema's matching version, then the
// companion's storage version, then the definition's own embedded
// schema.
func (d *Definition) SchemaFor(version string, companion *CompanionSchema) *apiextensionsv1.JSONSchemaProps {
	if companion != nil {
		if s, ok := companion.Versions[version]; ok && s != nil {
			return s
		}
		if s, ok := companion.Versions[companion.StorageVersion]; ok && s != nil {
			return s
		}
	}
	for i := range d.Versions {
		if d.Versions[i].Name == version {
			return d.Versions[i].Schema
		}
	}
	return nil
}
