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

// Package ingestor implements the periodic refresh pass that turns
// composite resource definitions observed across clusters into catalog
// entities.
//
// One pass aggregates definitions, compositions and companion schemas
// from every reachable cluster, merges duplicates by name, classifies
// each definition's dialect, compiles its schema into a provisioning
// form, synthesizes the generation workflow and API document, and
// publishes the complete entity set as a full replacement.
//
// Key properties:
// - A failed cluster is skipped; the pass always runs to completion
// - Publication is all-or-nothing: never a partial entity set
// - Total failure publishes an empty set so staleness is visible
// - No state survives between passes except fetcher-held credentials
package ingestor
