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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatchCompositions(t *testing.T) {
	tests := []struct {
		name     string
		def      *Definition
		comps    []*Composition
		expected []string
	}{
		{
			name: "exact match appends",
			def: &Definition{
				Name:               "xdatabases.example.org",
				StatusCompositeRef: &CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"},
			},
			comps: []*Composition{
				{Name: "db-aws", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"}},
			},
			expected: []string{"db-aws"},
		},
		{
			name: "kind casing differences still match",
			def: &Definition{
				Name:               "xdatabases.example.org",
				StatusCompositeRef: &CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"},
			},
			comps: []*Composition{
				{Name: "db-gcp", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "xdatabase"}},
			},
			expected: []string{"db-gcp"},
		},
		{
			name: "api version mismatch never matches",
			def: &Definition{
				Name:               "xdatabases.example.org",
				StatusCompositeRef: &CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"},
			},
			comps: []*Composition{
				{Name: "db-old", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1beta1", Kind: "XDatabase"}},
			},
			expected: nil,
		},
		{
			name: "kind mismatch never matches",
			def: &Definition{
				Name:               "xdatabases.example.org",
				StatusCompositeRef: &CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"},
			},
			comps: []*Composition{
				{Name: "bucket", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XBucket"}},
			},
			expected: nil,
		},
		{
			name: "derived type is used when status is absent",
			def: &Definition{
				Name:                "xdatabases.example.org",
				DerivedCompositeRef: &CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"},
			},
			comps: []*Composition{
				{Name: "db-aws", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"}},
			},
			expected: []string{"db-aws"},
		},
		{
			name: "no resolvable type yields no matches",
			def:  &Definition{Name: "xdatabases.example.org"},
			comps: []*Composition{
				{Name: "db-aws", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"}},
			},
			expected: nil,
		},
		{
			name: "duplicate names are appended once",
			def: &Definition{
				Name:               "xdatabases.example.org",
				Compositions:       []string{"db-aws"},
				StatusCompositeRef: &CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"},
			},
			comps: []*Composition{
				{Name: "db-aws", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"}},
			},
			expected: []string{"db-aws"},
		},
		{
			name: "multiple matches are sorted",
			def: &Definition{
				Name:               "xdatabases.example.org",
				StatusCompositeRef: &CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"},
			},
			comps: []*Composition{
				{Name: "db-gcp", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"}},
				{Name: "db-aws", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"}},
			},
			expected: []string{"db-aws", "db-gcp"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			MatchCompositions([]*Definition{tc.def}, tc.comps)

			if diff := cmp.Diff(tc.expected, tc.def.Compositions); diff != "" {
				t.Errorf("unexpected composition list (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchCompositionsDoesNotMutateOtherFields(t *testing.T) {
	def := &Definition{
		Name:               "xdatabases.example.org",
		Group:              "example.org",
		Kind:               "XDatabase",
		Clusters:           []ClusterRef{{Name: "prod", Endpoint: "https://prod.example.com"}},
		StatusCompositeRef: &CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"},
	}
	before := *def
	beforeClusters := append([]ClusterRef(nil), def.Clusters...)

	MatchCompositions([]*Definition{def}, []*Composition{
		{Name: "db-aws", CompositeTypeRef: CompositeTypeRef{APIVersion: "example.org/v1", Kind: "XDatabase"}},
	})

	if def.Name != before.Name || def.Group != before.Group || def.Kind != before.Kind {
		t.Errorf("matching mutated identity fields: before %+v, after %+v", before, *def)
	}
	if diff := cmp.Diff(beforeClusters, def.Clusters); diff != "" {
		t.Errorf("matching mutated cluster list (-want +got):\n%s", diff)
	}
}
