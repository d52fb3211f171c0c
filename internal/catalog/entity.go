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

// Package catalog models the generated catalog entities and their
// full-replacement publication.
package catalog

import (
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/platformkit/crossplane-ingestor/internal/apidoc"
	"github.com/platformkit/crossplane-ingestor/internal/crossplane"
	"github.com/platformkit/crossplane-ingestor/internal/forms"
	"github.com/platformkit/crossplane-ingestor/internal/workflow"
)

// MaxEntityNameLength is the catalog's hard limit on entity names.
// Entities exceeding it are dropped with a warning, never published.
const MaxEntityNameLength = 63

// entityName appends a suffix to a definition name, trimming the
// definition part so the result stays within MaxEntityNameLength. The
// suffix always survives intact; a definition name at the limit loses
// trailing characters instead of the whole entity.
func entityName(base, suffix string) string {
	limit := MaxEntityNameLength - len(suffix)
	if len(base) > limit {
		base = strings.TrimRight(base[:limit], "-.")
	}
	return base + suffix
}

type Metadata struct {
	Name        string            `json:"name"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Entity is anything the catalog mutation API accepts.
type Entity interface {
	GetKind() string
	GetName() string
}

// Template is the provisioning template generated for one definition
// version: the compiled form groups plus the generation workflow.
type Template struct {
	APIVersion string       `json:"apiVersion"`
	Kind       string       `json:"kind"`
	Metadata   Metadata     `json:"metadata"`
	Spec       TemplateSpec `json:"spec"`
}

type TemplateSpec struct {
	Type       string          `json:"type"`
	Owner      string          `json:"owner,omitempty"`
	Parameters []forms.Group   `json:"parameters"`
	Steps      []workflow.Step `json:"steps"`
}

func (t *Template) GetKind() string { return t.Kind }
func (t *Template) GetName() string { return t.Metadata.Name }

// API is the descriptive API entity generated alongside each template.
// Definition carries the rendered OpenAPI document.
type API struct {
	APIVersion string   `json:"apiVersion"`
	Kind       string   `json:"kind"`
	Metadata   Metadata `json:"metadata"`
	Spec       APISpec  `json:"spec"`
}

type APISpec struct {
	Type       string `json:"type"`
	Lifecycle  string `json:"lifecycle"`
	Owner      string `json:"owner,omitempty"`
	Definition string `json:"definition"`
}

func (a *API) GetKind() string { return a.Kind }
func (a *API) GetName() string { return a.Metadata.Name }

// NewTemplate builds the template entity for one definition version.
func NewTemplate(def *crossplane.Definition, version, owner string, parameters []forms.Group, steps []workflow.Step) *Template {
	return &Template{
		APIVersion: "scaffolder.backstage.io/v1beta3",
		Kind:       "Template",
		Metadata: Metadata{
			Name:        entityName(def.Name, "-"+version),
			Title:       def.Kind + " (" + version + ")",
			Description: "Provision a " + def.Kind + " resource",
			Tags:        []string{"crossplane", string(crossplane.Classify(def))},
		},
		Spec: TemplateSpec{
			Type:       "crossplane-resource",
			Owner:      owner,
			Parameters: parameters,
			Steps:      steps,
		},
	}
}

// NewAPI builds the API entity wrapping the rendered OpenAPI document.
func NewAPI(def *crossplane.Definition, version, owner string, doc *apidoc.Document) (*API, error) {
	rendered, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render API document for %q: %w", def.Name, err)
	}

	return &API{
		APIVersion: "backstage.io/v1alpha1",
		Kind:       "API",
		Metadata: Metadata{
			Name:        entityName(def.Name, "-"+version+"-api"),
			Title:       def.Plural + "." + def.Group,
			Description: "API description for " + def.Kind + " resources",
			Tags:        []string{"crossplane", "openapi"},
		},
		Spec: APISpec{
			Type:       "openapi",
			Lifecycle:  "production",
			Owner:      owner,
			Definition: string(rendered),
		},
	}, nil
}
