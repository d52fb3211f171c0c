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

// Package forms compiles structural schemas into provisioning-form
// schemas. One recursive rule set is shared by every dialect; the
// dialect only influences the fixed top-level groups assembled around
// the compiled spec.
package forms

import (
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/util/json"
)

// toggleField is the boolean child that turns its siblings into a
// conditional show/hide block.
const toggleField = "enabled"

// CompileSchema rewrites one structural schema fragment into a form
// schema fragment, depth first. placeholders moves concrete non-boolean
// defaults into a placeholder hint instead of pre-filling the form.
func CompileSchema(prop apiextensionsv1.JSONSchemaProps, placeholders bool) map[string]any {
	// Schema authors who did not specify nested structure get a
	// free-text escape hatch instead of an unusable empty object.
	if prop.Type == "" && prop.XPreserveUnknownFields != nil && *prop.XPreserveUnknownFields {
		out := map[string]any{
			"type":      "string",
			"ui:widget": "textarea",
		}
		if prop.Title != "" {
			out["title"] = prop.Title
		}
		if prop.Description != "" {
			out["description"] = prop.Description
		} else {
			out["description"] = "Free-form YAML for this unconstrained field"
		}
		return out
	}

	if prop.Type == "object" && len(prop.Properties) > 0 {
		return compileObject(prop, placeholders)
	}

	out := schemaToMap(prop)
	if placeholders && prop.Type != "" && prop.Type != "boolean" && prop.Default != nil {
		out["ui:placeholder"] = renderDefault(prop.Default)
		delete(out, "default")
	}
	return out
}

func compileObject(prop apiextensionsv1.JSONSchemaProps, placeholders bool) map[string]any {
	out := map[string]any{"type": "object"}
	if prop.Title != "" {
		out["title"] = prop.Title
	}
	if prop.Description != "" {
		out["description"] = prop.Description
	}

	children := map[string]any{}
	for name, child := range prop.Properties {
		children[name] = CompileSchema(child, placeholders)
	}

	toggle, hasToggle := prop.Properties[toggleField]
	if hasToggle && toggle.Type == "boolean" && len(children) > 1 {
		// Everything except the toggle moves behind a conditional
		// dependency so the form only shows the block when enabled.
		siblings := map[string]any{}
		for name, child := range children {
			if name != toggleField {
				siblings[name] = child
			}
		}

		branch := map[string]any{
			toggleField: map[string]any{"enum": []any{true}},
		}
		for name, child := range siblings {
			branch[name] = child
		}

		dependent := map[string]any{"properties": branch}
		if required := requiredWithout(prop.Required, toggleField); len(required) > 0 {
			dependent["required"] = required
		}

		out["properties"] = map[string]any{toggleField: children[toggleField]}
		out["dependencies"] = map[string]any{
			toggleField: map[string]any{"oneOf": []any{dependent}},
		}
		return out
	}

	out["properties"] = children
	if len(prop.Required) > 0 {
		out["required"] = toAnySlice(prop.Required)
	}
	return out
}

// schemaToMap converts a schema subtree to its generic JSON form. The
// round trip keeps every attribute the walk does not rewrite.
func schemaToMap(prop apiextensionsv1.JSONSchemaProps) map[string]any {
	data, err := json.Marshal(prop)
	if err != nil {
		// JSONSchemaProps always marshals; an error here means a broken
		// apiextensions build, not bad input.
		return map[string]any{"type": prop.Type}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"type": prop.Type}
	}
	return out
}

func renderDefault(def *apiextensionsv1.JSON) string {
	var v any
	if err := json.Unmarshal(def.Raw, &v); err != nil {
		return string(def.Raw)
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func requiredWithout(required []string, skip string) []any {
	var out []any
	for _, r := range required {
		if r != skip {
			out = append(out, r)
		}
	}
	return out
}

func toAnySlice(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
