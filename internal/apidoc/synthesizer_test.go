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

package apidoc

import (
	"testing"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"

	"github.com/platformkit/crossplane-ingestor/internal/crossplane"
)

func testDefinition() *crossplane.Definition {
	return &crossplane.Definition{
		Name:        "xdatabases.example.org",
		Group:       "example.org",
		Kind:        "XDatabase",
		Plural:      "xdatabases",
		ClaimKind:   "Database",
		ClaimPlural: "databases",
		Clusters: []crossplane.ClusterRef{
			{Name: "prod", Endpoint: "https://prod.example.com"},
			{Name: "staging", Endpoint: "https://staging.example.com"},
		},
	}
}

func testSchema() *apiextensionsv1.JSONSchemaProps {
	return &apiextensionsv1.JSONSchemaProps{
		Type: "object",
		Properties: map[string]apiextensionsv1.JSONSchemaProps{
			"spec": {Type: "object"},
		},
	}
}

func TestSynthesizeClaimDialect(t *testing.T) {
	doc := Synthesize(testDefinition(), "v1", testSchema(), crossplane.ProfileFor(crossplane.DialectLegacyClaim))

	if doc.Info.Title != "databases.example.org" {
		t.Errorf("expected the claim plural in the title, got %q", doc.Info.Title)
	}
	if doc.Info.Version != "v1" {
		t.Errorf("expected version v1, got %q", doc.Info.Version)
	}

	// Claim dialects are namespaced: flat list plus the namespaced set.
	expected := []string{
		"/apis/example.org/v1/databases",
		"/apis/example.org/v1/namespaces/{namespace}/databases",
		"/apis/example.org/v1/namespaces/{namespace}/databases/{name}",
	}
	if len(doc.Paths) != len(expected) {
		t.Fatalf("expected %d paths, got %v", len(expected), doc.Paths)
	}
	for _, p := range expected {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("missing path %q", p)
		}
	}

	item := doc.Paths["/apis/example.org/v1/namespaces/{namespace}/databases/{name}"]
	if item.Get == nil || item.Put == nil || item.Delete == nil {
		t.Errorf("expected get, put and delete on the single-object path, got %+v", item)
	}
	if item.Post != nil {
		t.Errorf("creation belongs on the collection path, not the single-object path")
	}
}

func TestSynthesizeClusterDialect(t *testing.T) {
	doc := Synthesize(testDefinition(), "v1", testSchema(), crossplane.ProfileFor(crossplane.DialectDirectCluster))

	if doc.Info.Title != "xdatabases.example.org" {
		t.Errorf("expected the composite plural in the title, got %q", doc.Info.Title)
	}

	if len(doc.Paths) != 1 {
		t.Fatalf("expected only the flat list path, got %v", doc.Paths)
	}
	if _, ok := doc.Paths["/apis/example.org/v1/xdatabases"]; !ok {
		t.Errorf("missing the flat list path: %v", doc.Paths)
	}
}

func TestSynthesizeServersAndTags(t *testing.T) {
	doc := Synthesize(testDefinition(), "v1", testSchema(), crossplane.ProfileFor(crossplane.DialectLegacyClaim))

	if len(doc.Servers) != 2 {
		t.Fatalf("expected one server per cluster, got %v", doc.Servers)
	}
	if doc.Servers[0].URL != "https://prod.example.com" || doc.Servers[0].Description != "prod" {
		t.Errorf("unexpected server entry: %+v", doc.Servers[0])
	}

	if len(doc.Tags) != 3 {
		t.Fatalf("expected the fixed three-tag taxonomy, got %v", doc.Tags)
	}
	names := map[string]bool{}
	for _, tag := range doc.Tags {
		names[tag.Name] = true
	}
	for _, want := range []string{TagClusterScoped, TagNamespaceScoped, TagSingleObject} {
		if !names[want] {
			t.Errorf("missing tag %q", want)
		}
	}
}

func TestSynthesizeSchemaComponent(t *testing.T) {
	doc := Synthesize(testDefinition(), "v1", testSchema(), crossplane.ProfileFor(crossplane.DialectLegacyClaim))

	if doc.Components == nil {
		t.Fatalf("expected a schema component")
	}
	if _, ok := doc.Components.Schemas["Database"]; !ok {
		t.Errorf("expected the schema registered under the claim kind, got %v", doc.Components.Schemas)
	}

	list := doc.Paths["/apis/example.org/v1/databases"].Get
	items := list.Responses["200"].Content["application/json"].Schema["items"].(map[string]any)
	if items["$ref"] != "#/components/schemas/Database" {
		t.Errorf("expected the list items to reference the component, got %v", items)
	}

	// Without a resolvable schema the component section is omitted, but
	// the paths still reference the kind.
	doc = Synthesize(testDefinition(), "v1", nil, crossplane.ProfileFor(crossplane.DialectLegacyClaim))
	if doc.Components != nil {
		t.Errorf("expected no components without a schema, got %v", doc.Components)
	}
}

func TestSynthesizeCRD(t *testing.T) {
	clusters := []crossplane.ClusterRef{{Name: "prod", Endpoint: "https://prod.example.com"}}

	doc := SynthesizeCRD("widgets.io", "v1beta1", "Widget", "widgets", true, testSchema(), clusters)

	if doc.Info.Title != "widgets.widgets.io" {
		t.Errorf("unexpected title %q", doc.Info.Title)
	}
	if _, ok := doc.Paths["/apis/widgets.io/v1beta1/namespaces/{namespace}/widgets"]; !ok {
		t.Errorf("expected the namespaced collection path, got %v", doc.Paths)
	}

	doc = SynthesizeCRD("widgets.io", "v1beta1", "Widget", "widgets", false, testSchema(), clusters)
	if len(doc.Paths) != 1 {
		t.Errorf("expected only the flat path for cluster-scoped kinds, got %v", doc.Paths)
	}
}
