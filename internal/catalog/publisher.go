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

package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

// Publisher replaces the catalog's entity set wholesale. A consumer
// never observes a partial mix of old and new entities; publishing an
// empty set is how total pipeline failure is made visible.
type Publisher interface {
	Replace(ctx context.Context, entities []Entity) error
}

// FilterPublishable drops entities whose names exceed the catalog's
// length constraint, logging a warning per dropped entity.
func FilterPublishable(entities []Entity, log *zap.SugaredLogger) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if len(e.GetName()) > MaxEntityNameLength {
			log.Warnw("Dropping entity, name exceeds catalog limit",
				"kind", e.GetKind(), "name", e.GetName(), "limit", MaxEntityNameLength)
			continue
		}
		out = append(out, e)
	}
	return out
}

// HTTPPublisher posts the full entity set to the host catalog's
// mutation endpoint as a multi-document YAML stream.
type HTTPPublisher struct {
	endpoint string
	client   *http.Client
	log      *zap.SugaredLogger
}

func NewHTTPPublisher(endpoint string, log *zap.SugaredLogger) *HTTPPublisher {
	return &HTTPPublisher{endpoint: endpoint, client: http.DefaultClient, log: log}
}

func (p *HTTPPublisher) Replace(ctx context.Context, entities []Entity) error {
	var buf bytes.Buffer
	for _, e := range entities {
		data, err := yaml.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entity %q: %w", e.GetName(), err)
		}
		buf.WriteString("---\n")
		buf.Write(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &buf)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/yaml")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish entity set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("catalog rejected entity set: %s: %s", resp.Status, string(body))
	}

	p.log.Infow("Published entity set", "entities", len(entities))
	return nil
}

// MemoryPublisher keeps the last published set in memory. Used in
// tests and for dry runs.
type MemoryPublisher struct {
	mu       sync.Mutex
	entities []Entity
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Replace(_ context.Context, entities []Entity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entities = append([]Entity(nil), entities...)
	return nil
}

// Current returns the last published set.
func (p *MemoryPublisher) Current() []Entity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Entity(nil), p.entities...)
}
