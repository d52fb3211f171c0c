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
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/json"
)

// ParseDefinition converts an unstructured composite resource
// definition into the internal model. Objects without a spec or
// without a single version are rejected; the aggregator logs and skips
// them.
func ParseDefinition(u *unstructured.Unstructured) (*Definition, error) {
	name := u.GetName()
	if name == "" {
		return nil, fmt.Errorf("definition has no name")
	}

	if _, found, _ := unstructured.NestedMap(u.Object, "spec"); !found {
		return nil, fmt.Errorf("definition %q has no spec", name)
	}

	d := &Definition{Name: name}
	d.Group, _, _ = unstructured.NestedString(u.Object, "spec", "group")
	d.Kind, _, _ = unstructured.NestedString(u.Object, "spec", "names", "kind")
	d.Plural, _, _ = unstructured.NestedString(u.Object, "spec", "names", "plural")
	d.ClaimKind, _, _ = unstructured.NestedString(u.Object, "spec", "claimNames", "kind")
	d.ClaimPlural, _, _ = unstructured.NestedString(u.Object, "spec", "claimNames", "plural")
	d.Scope, _, _ = unstructured.NestedString(u.Object, "spec", "scope")

	versions, _, _ := unstructured.NestedSlice(u.Object, "spec", "versions")
	for _, v := range versions {
		vm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		sv := SchemaVersion{}
		sv.Name, _, _ = unstructured.NestedString(vm, "name")
		sv.Served, _, _ = unstructured.NestedBool(vm, "served")
		sv.Referenceable, _, _ = unstructured.NestedBool(vm, "referenceable")
		if raw, found, _ := unstructured.NestedMap(vm, "schema", "openAPIV3Schema"); found {
			schema, err := toJSONSchema(raw)
			if err != nil {
				return nil, fmt.Errorf("definition %q version %q: %w", name, sv.Name, err)
			}
			sv.Schema = schema
		}
		if sv.Name != "" {
			d.Versions = append(d.Versions, sv)
		}
	}
	if len(d.Versions) == 0 {
		return nil, fmt.Errorf("definition %q declares no versions", name)
	}

	if ref := parseTypeRef(u.Object, "status", "controllers", "compositeResourceTypeRef"); ref != nil {
		d.StatusCompositeRef = ref
	}
	if d.Kind != "" && d.Group != "" {
		d.DerivedCompositeRef = &CompositeTypeRef{
			APIVersion: d.Group + "/" + d.Versions[0].Name,
			Kind:       d.Kind,
		}
	}

	return d, nil
}

// ParseComposition converts an unstructured composition. A composition
// without a composite type reference cannot be matched to anything and
// is rejected.
func ParseComposition(u *unstructured.Unstructured) (*Composition, error) {
	name := u.GetName()
	if name == "" {
		return nil, fmt.Errorf("composition has no name")
	}

	ref := parseTypeRef(u.Object, "spec", "compositeTypeRef")
	if ref == nil || ref.APIVersion == "" || ref.Kind == "" {
		return nil, fmt.Errorf("composition %q has no composite type reference", name)
	}

	return &Composition{Name: name, CompositeTypeRef: *ref}, nil
}

// ParseCompanionSchema converts a generated CRD into the per-version
// schema index keyed by the owning definition's name.
func ParseCompanionSchema(u *unstructured.Unstructured) (*CompanionSchema, error) {
	name := u.GetName()
	if name == "" {
		return nil, fmt.Errorf("companion schema object has no name")
	}

	cs := &CompanionSchema{Name: name, Versions: map[string]*apiextensionsv1.JSONSchemaProps{}}

	versions, _, _ := unstructured.NestedSlice(u.Object, "spec", "versions")
	for _, v := range versions {
		vm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		vname, _, _ := unstructured.NestedString(vm, "name")
		if vname == "" {
			continue
		}
		if storage, _, _ := unstructured.NestedBool(vm, "storage"); storage {
			cs.StorageVersion = vname
		}
		raw, found, _ := unstructured.NestedMap(vm, "schema", "openAPIV3Schema")
		if !found {
			continue
		}
		schema, err := toJSONSchema(raw)
		if err != nil {
			return nil, fmt.Errorf("companion schema %q version %q: %w", name, vname, err)
		}
		cs.Versions[vname] = schema
	}
	if len(cs.Versions) == 0 {
		return nil, fmt.Errorf("companion schema %q carries no schemas", name)
	}

	return cs, nil
}

func parseTypeRef(obj map[string]any, fields ...string) *CompositeTypeRef {
	m, found, _ := unstructured.NestedMap(obj, fields...)
	if !found {
		return nil
	}
	ref := &CompositeTypeRef{}
	ref.APIVersion, _, _ = unstructured.NestedString(m, "apiVersion")
	ref.Kind, _, _ = unstructured.NestedString(m, "kind")
	if ref.APIVersion == "" && ref.Kind == "" {
		return nil
	}
	return ref
}

func toJSONSchema(raw map[string]any) (*apiextensionsv1.JSONSchemaProps, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	schema := &apiextensionsv1.JSONSchemaProps{}
	if err := json.Unmarshal(data, schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return schema, nil
}
