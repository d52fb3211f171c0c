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

// Package apidoc emits descriptive OpenAPI documents for ingested
// resource kinds. The documents are hand-assembled struct trees; the
// host platform renders them.
package apidoc

import (
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/util/json"

	"github.com/platformkit/crossplane-ingestor/internal/crossplane"
)

// Fixed three-tag taxonomy every emitted document carries.
const (
	TagClusterScoped   = "cluster-scoped"
	TagNamespaceScoped = "namespace-scoped"
	TagSingleObject    = "single-object"
)

type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Servers    []Server            `json:"servers,omitempty"`
	Tags       []Tag               `json:"tags,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components *Components         `json:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type PathItem struct {
	Get    *Operation `json:"get,omitempty"`
	Post   *Operation `json:"post,omitempty"`
	Put    *Operation `json:"put,omitempty"`
	Delete *Operation `json:"delete,omitempty"`
}

type Operation struct {
	Summary     string              `json:"summary,omitempty"`
	OperationID string              `json:"operationId,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Parameters  []Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

type Parameter struct {
	Name     string         `json:"name"`
	In       string         `json:"in"`
	Required bool           `json:"required,omitempty"`
	Schema   map[string]any `json:"schema,omitempty"`
}

type RequestBody struct {
	Required bool                 `json:"required,omitempty"`
	Content  map[string]MediaType `json:"content"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

type MediaType struct {
	Schema map[string]any `json:"schema,omitempty"`
}

type Components struct {
	Schemas map[string]map[string]any `json:"schemas,omitempty"`
}

// Synthesize emits the document for one definition version. The schema
// argument is the resolved structural schema (companion preferred over
// embedded, resolved by the caller through Definition.SchemaFor). The
// consumed resource is the claim for claim-mediated dialects and the
// composite itself otherwise.
func Synthesize(def *crossplane.Definition, version string, schema *apiextensionsv1.JSONSchemaProps, profile crossplane.Profile) *Document {
	kind := def.Kind
	plural := def.Plural
	if profile.HasClaimFields {
		kind = def.ClaimKind
		plural = def.ClaimPlural
	}

	return build(buildInput{
		Group:      def.Group,
		Version:    version,
		Kind:       kind,
		Plural:     plural,
		Namespaced: profile.NeedsNamespace,
		Schema:     schema,
		Clusters:   def.Clusters,
	})
}

// SynthesizeCRD emits the same document shape for a plain custom
// resource kind, using its declared scope to pick the path set.
func SynthesizeCRD(group, version, kind, plural string, namespaced bool, schema *apiextensionsv1.JSONSchemaProps, clusters []crossplane.ClusterRef) *Document {
	return build(buildInput{
		Group:      group,
		Version:    version,
		Kind:       kind,
		Plural:     plural,
		Namespaced: namespaced,
		Schema:     schema,
		Clusters:   clusters,
	})
}

type buildInput struct {
	Group      string
	Version    string
	Kind       string
	Plural     string
	Namespaced bool
	Schema     *apiextensionsv1.JSONSchemaProps
	Clusters   []crossplane.ClusterRef
}

func build(in buildInput) *Document {
	doc := &Document{
		OpenAPI: "3.0.0",
		Info: Info{
			Title:       in.Plural + "." + in.Group,
			Description: "API for managing " + in.Kind + " resources",
			Version:     in.Version,
		},
		Tags: []Tag{
			{Name: TagClusterScoped, Description: "Operations across the whole cluster"},
			{Name: TagNamespaceScoped, Description: "Operations within one namespace"},
			{Name: TagSingleObject, Description: "Operations on a single object"},
		},
		Paths: map[string]PathItem{},
	}

	for _, c := range in.Clusters {
		doc.Servers = append(doc.Servers, Server{URL: c.Endpoint, Description: c.Name})
	}

	schemaRef := map[string]any{"$ref": "#/components/schemas/" + in.Kind}
	if in.Schema != nil {
		doc.Components = &Components{Schemas: map[string]map[string]any{
			in.Kind: schemaToMap(in.Schema),
		}}
	}

	listResponse := map[string]Response{
		"200": {
			Description: "List of " + in.Plural,
			Content: map[string]MediaType{
				"application/json": {Schema: map[string]any{"type": "array", "items": schemaRef}},
			},
		},
	}
	objectResponse := map[string]Response{
		"200": {
			Description: "The " + in.Kind + " object",
			Content: map[string]MediaType{
				"application/json": {Schema: schemaRef},
			},
		},
	}

	flatPath := "/apis/" + in.Group + "/" + in.Version + "/" + in.Plural
	doc.Paths[flatPath] = PathItem{
		Get: &Operation{
			Summary:     "List all " + in.Plural,
			OperationID: "listAll" + in.Kind,
			Tags:        []string{TagClusterScoped},
			Responses:   listResponse,
		},
	}

	if !in.Namespaced {
		return doc
	}

	namespaceParam := Parameter{Name: "namespace", In: "path", Required: true, Schema: map[string]any{"type": "string"}}
	nameParam := Parameter{Name: "name", In: "path", Required: true, Schema: map[string]any{"type": "string"}}
	body := &RequestBody{
		Required: true,
		Content:  map[string]MediaType{"application/json": {Schema: schemaRef}},
	}

	nsPath := "/apis/" + in.Group + "/" + in.Version + "/namespaces/{namespace}/" + in.Plural
	doc.Paths[nsPath] = PathItem{
		Get: &Operation{
			Summary:     "List " + in.Plural + " in a namespace",
			OperationID: "listNamespaced" + in.Kind,
			Tags:        []string{TagNamespaceScoped},
			Parameters:  []Parameter{namespaceParam},
			Responses:   listResponse,
		},
		Post: &Operation{
			Summary:     "Create a " + in.Kind,
			OperationID: "createNamespaced" + in.Kind,
			Tags:        []string{TagNamespaceScoped},
			Parameters:  []Parameter{namespaceParam},
			RequestBody: body,
			Responses:   objectResponse,
		},
	}

	doc.Paths[nsPath+"/{name}"] = PathItem{
		Get: &Operation{
			Summary:     "Get a " + in.Kind,
			OperationID: "readNamespaced" + in.Kind,
			Tags:        []string{TagSingleObject},
			Parameters:  []Parameter{namespaceParam, nameParam},
			Responses:   objectResponse,
		},
		Put: &Operation{
			Summary:     "Update a " + in.Kind,
			OperationID: "replaceNamespaced" + in.Kind,
			Tags:        []string{TagSingleObject},
			Parameters:  []Parameter{namespaceParam, nameParam},
			RequestBody: body,
			Responses:   objectResponse,
		},
		Delete: &Operation{
			Summary:     "Delete a " + in.Kind,
			OperationID: "deleteNamespaced" + in.Kind,
			Tags:        []string{TagSingleObject},
			Parameters:  []Parameter{namespaceParam, nameParam},
			Responses: map[string]Response{
				"200": {Description: "The " + in.Kind + " was deleted"},
			},
		},
	}

	return doc
}

func schemaToMap(schema *apiextensionsv1.JSONSchemaProps) map[string]any {
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	return out
}
