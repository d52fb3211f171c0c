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

package forms

import (
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"

	"github.com/platformkit/crossplane-ingestor/internal/crossplane"
	"github.com/platformkit/crossplane-ingestor/internal/pkg/config"
)

// Parameter names shared with the workflow synthesizer.
const (
	ParamName      = "xrName"
	ParamNamespace = "xrNamespace"
	ParamOwner     = "owner"

	ParamSelectionStrategy = "compositionSelectionStrategy"
	ParamPublish           = "pushToGit"
	ParamLayout            = "manifestLayout"
	ParamTargetClusters    = "targetClusters"
	ParamBasePath          = "basePath"
	ParamRepoURL           = "repoUrl"
	ParamTargetBranch      = "targetBranch"
)

// Composition selection strategies offered on generated forms.
const (
	SelectionRuntime         = "runtime"
	SelectionDirectReference = "direct-reference"
	SelectionLabelSelector   = "label-selector"
)

// Manifest layout choices for publication.
const (
	LayoutClusterScoped   = "cluster-scoped"
	LayoutNamespaceScoped = "namespace-scoped"
	LayoutCustomPath      = "custom"
)

// nameSlugPattern constrains generated resource names to DNS-1123
// labels.
const nameSlugPattern = "^[a-z0-9]([-a-z0-9]*[a-z0-9])?$"

// Group is one page of the compiled provisioning form: a structural
// schema fragment plus its conditional dependency tree. Groups are
// never persisted; the full set is regenerated each refresh.
type Group struct {
	Title        string         `json:"title"`
	Required     []string       `json:"required,omitempty"`
	Properties   map[string]any `json:"properties"`
	Dependencies map[string]any `json:"dependencies,omitempty"`
}

// Compiler assembles the four fixed form groups for one definition
// version.
type Compiler struct {
	cfg *config.Config
}

func NewCompiler(cfg *config.Config) *Compiler {
	return &Compiler{cfg: cfg}
}

// Compile produces the ordered group list: identity, compiled spec,
// dialect settings, publication settings.
func (c *Compiler) Compile(def *crossplane.Definition, schema *apiextensionsv1.JSONSchemaProps, profile crossplane.Profile) []Group {
	return []Group{
		c.identityGroup(profile),
		c.specGroup(schema),
		c.settingsGroup(def, profile),
		c.publicationGroup(def, profile),
	}
}

func (c *Compiler) identityGroup(profile crossplane.Profile) Group {
	g := Group{
		Title:    "Resource Metadata",
		Required: []string{ParamName, ParamOwner},
		Properties: map[string]any{
			ParamName: map[string]any{
				"type":        "string",
				"title":       "Name",
				"description": "Name of the provisioned resource",
				"maxLength":   63,
				"pattern":     nameSlugPattern,
			},
			ParamOwner: map[string]any{
				"type":        "string",
				"title":       "Owner",
				"description": "Owner of the catalog entity",
			},
		},
	}

	if profile.NeedsNamespace {
		g.Properties[ParamNamespace] = map[string]any{
			"type":        "string",
			"title":       "Namespace",
			"description": "Namespace the resource is created in",
			"pattern":     nameSlugPattern,
		}
		g.Required = append(g.Required, ParamNamespace)
	}

	return g
}

// specGroup compiles the spec subtree of the resolved schema. A schema
// without a spec subtree yields an empty page rather than dropping the
// definition.
func (c *Compiler) specGroup(schema *apiextensionsv1.JSONSchemaProps) Group {
	g := Group{Title: "Resource Specification", Properties: map[string]any{}}
	if schema == nil {
		return g
	}

	spec, ok := schema.Properties["spec"]
	if !ok {
		return g
	}

	compiled := CompileSchema(spec, c.cfg.ConvertDefaultValuesToPlaceholders)
	if props, ok := compiled["properties"].(map[string]any); ok {
		g.Properties = props
	}
	if required, ok := compiled["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				g.Required = append(g.Required, s)
			}
		}
	}
	if deps, ok := compiled["dependencies"].(map[string]any); ok {
		g.Dependencies = deps
	}

	return g
}

// settingsGroup builds the dialect-specific settings. Claim-mediated
// dialects expose connection-secret and delete-policy fields at the top
// level; direct dialects nest the selection settings one level deeper
// under a crossplane configuration object and omit the claim-only
// fields.
func (c *Compiler) settingsGroup(def *crossplane.Definition, profile crossplane.Profile) Group {
	selection, deps := c.selectionSettings(def)

	if profile.SettingsNestingDepth == 0 {
		g := Group{
			Title:      "Crossplane Settings",
			Properties: map[string]any{},
		}
		if profile.HasClaimFields {
			g.Properties["connectionSecretName"] = map[string]any{
				"type":        "string",
				"title":       "Connection Secret Name",
				"description": "Name of the secret the connection details are written to",
			}
			g.Properties["compositeDeletePolicy"] = map[string]any{
				"type":    "string",
				"title":   "Composite Delete Policy",
				"enum":    []any{"Background", "Foreground"},
				"default": "Background",
			}
		}
		g.Properties["compositionUpdatePolicy"] = map[string]any{
			"type":  "string",
			"title": "Composition Update Policy",
			"enum":  []any{"Automatic", "Manual"},
		}
		for name, prop := range selection {
			g.Properties[name] = prop
		}
		g.Dependencies = deps
		return g
	}

	nested := map[string]any{
		"type":  "object",
		"title": "Crossplane Configuration",
		"properties": map[string]any{
			"compositionUpdatePolicy": map[string]any{
				"type":  "string",
				"title": "Composition Update Policy",
				"enum":  []any{"Automatic", "Manual"},
			},
		},
	}
	props := nested["properties"].(map[string]any)
	for name, prop := range selection {
		props[name] = prop
	}
	if len(deps) > 0 {
		nested["dependencies"] = deps
	}

	return Group{
		Title:      "Crossplane Settings",
		Properties: map[string]any{"crossplane": nested},
	}
}

// selectionSettings returns the composition-selection enum and its
// conditional branches. Zero matched compositions degrade the strategy
// list to runtime and label-selector only.
func (c *Compiler) selectionSettings(def *crossplane.Definition) (map[string]any, map[string]any) {
	strategies := []any{SelectionRuntime}
	if len(def.Compositions) > 0 {
		strategies = append(strategies, SelectionDirectReference)
	}
	strategies = append(strategies, SelectionLabelSelector)

	properties := map[string]any{
		ParamSelectionStrategy: map[string]any{
			"type":        "string",
			"title":       "Composition Selection Strategy",
			"enum":        strategies,
			"default":     SelectionRuntime,
			"description": "How the composition for this resource is chosen",
		},
	}

	branches := []any{
		map[string]any{
			"properties": map[string]any{
				ParamSelectionStrategy: map[string]any{"enum": []any{SelectionRuntime}},
			},
		},
	}

	if len(def.Compositions) > 0 {
		names := make([]any, 0, len(def.Compositions))
		for _, n := range def.Compositions {
			names = append(names, n)
		}
		branches = append(branches, map[string]any{
			"properties": map[string]any{
				ParamSelectionStrategy: map[string]any{"enum": []any{SelectionDirectReference}},
				"compositionRef": map[string]any{
					"type":  "object",
					"title": "Composition Reference",
					"properties": map[string]any{
						"name": map[string]any{
							"type":  "string",
							"title": "Composition Name",
							"enum":  names,
						},
					},
					"required": []any{"name"},
				},
			},
		})
	}

	branches = append(branches, map[string]any{
		"properties": map[string]any{
			ParamSelectionStrategy: map[string]any{"enum": []any{SelectionLabelSelector}},
			"compositionSelector": map[string]any{
				"type":  "object",
				"title": "Composition Selector",
				"properties": map[string]any{
					"matchLabels": map[string]any{
						"type":                 "object",
						"title":                "Match Labels",
						"additionalProperties": map[string]any{"type": "string"},
					},
				},
				"required": []any{"matchLabels"},
			},
		},
	})

	dependencies := map[string]any{
		ParamSelectionStrategy: map[string]any{"oneOf": branches},
	}

	return properties, dependencies
}

// publicationGroup builds the publish gate, layout choice and optional
// repository pickers. The namespace-scoped layout is only offered when
// the dialect carries a namespace; cluster-scoped composites have no
// namespace to lay manifests out by.
func (c *Compiler) publicationGroup(def *crossplane.Definition, profile crossplane.Profile) Group {
	clusterNames := make([]any, 0, len(def.Clusters))
	for _, cl := range def.Clusters {
		clusterNames = append(clusterNames, cl.Name)
	}

	layouts := []any{LayoutClusterScoped}
	if profile.NeedsNamespace {
		layouts = append(layouts, LayoutNamespaceScoped)
	}
	layouts = append(layouts, LayoutCustomPath)

	enabledBranch := map[string]any{
		ParamPublish: map[string]any{"enum": []any{true}},
		ParamLayout: map[string]any{
			"type":    "string",
			"title":   "Manifest Layout",
			"enum":    layouts,
			"default": LayoutClusterScoped,
		},
	}

	if c.cfg.AllowRepositorySelection {
		enabledBranch[ParamRepoURL] = map[string]any{
			"type":     "string",
			"title":    "Repository Location",
			"ui:field": "RepoUrlPicker",
			"ui:options": map[string]any{
				"allowedHosts": toAnySlice(c.cfg.Hosts()),
			},
		}
		enabledBranch[ParamTargetBranch] = map[string]any{
			"type":        "string",
			"title":       "Target Branch",
			"description": "Branch the change request is opened against",
		}
	}

	layoutBranches := []any{
		map[string]any{
			"properties": map[string]any{
				ParamLayout: map[string]any{"enum": []any{LayoutClusterScoped}},
				ParamTargetClusters: map[string]any{
					"type":        "array",
					"title":       "Target Clusters",
					"items":       map[string]any{"type": "string", "enum": clusterNames},
					"uniqueItems": true,
					"minItems":    1,
				},
			},
			"required": []any{ParamTargetClusters},
		},
	}
	if profile.NeedsNamespace {
		layoutBranches = append(layoutBranches, map[string]any{
			"properties": map[string]any{
				ParamLayout: map[string]any{"enum": []any{LayoutNamespaceScoped}},
			},
		})
	}
	layoutBranches = append(layoutBranches, map[string]any{
		"properties": map[string]any{
			ParamLayout: map[string]any{"enum": []any{LayoutCustomPath}},
			ParamBasePath: map[string]any{
				"type":        "string",
				"title":       "Base Path",
				"description": "Repository path the manifests are written under",
			},
		},
		"required": []any{ParamBasePath},
	})

	return Group{
		Title: "Publication Settings",
		Properties: map[string]any{
			ParamPublish: map[string]any{
				"type":        "boolean",
				"title":       "Publish to version control",
				"description": "Open a change request with the rendered manifests",
				"default":     false,
			},
		},
		Dependencies: map[string]any{
			ParamPublish: map[string]any{
				"oneOf": []any{
					map[string]any{
						"properties": map[string]any{
							ParamPublish: map[string]any{"enum": []any{false}},
						},
					},
					map[string]any{
						"properties":   enabledBranch,
						"dependencies": map[string]any{ParamLayout: map[string]any{"oneOf": layoutBranches}},
					},
				},
			},
		},
	}
}
