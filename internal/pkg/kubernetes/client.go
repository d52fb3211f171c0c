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

package kubernetes

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/tools/clientcmd"
)

// Cluster is the per-cluster listing surface the aggregator consumes.
// Tests inject fakes; production clusters wrap a dynamic client.
type Cluster interface {
	Name() string
	Endpoint() string
	List(ctx context.Context, gvr schema.GroupVersionResource) (*unstructured.UnstructuredList, error)
}

type clusterClient struct {
	name     string
	endpoint string
	dyn      dynamic.Interface
}

// NewCluster wraps a dynamic client as a Cluster.
func NewCluster(name, endpoint string, dyn dynamic.Interface) Cluster {
	return &clusterClient{name: name, endpoint: endpoint, dyn: dyn}
}

func (c *clusterClient) Name() string     { return c.name }
func (c *clusterClient) Endpoint() string { return c.endpoint }

func (c *clusterClient) List(ctx context.Context, gvr schema.GroupVersionResource) (*unstructured.UnstructuredList, error) {
	list, err := c.dyn.Resource(gvr).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s on cluster %q: %w", gvr.Resource, c.name, err)
	}
	return list, nil
}

// ClustersFromKubeconfig builds one Cluster per kubeconfig context.
// When allowed is non-empty only the listed context names are used. A
// context whose credentials cannot be resolved is logged and skipped so
// one broken cluster never blocks the rest. A kubeconfig with zero
// usable contexts yields an empty slice, not an error.
func ClustersFromKubeconfig(path string, allowed []string, log *zap.SugaredLogger) ([]Cluster, error) {
	raw, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig %q: %w", path, err)
	}

	allow := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allow[name] = true
	}

	names := make([]string, 0, len(raw.Contexts))
	for name := range raw.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)

	var clusters []Cluster
	for _, name := range names {
		if len(allow) > 0 && !allow[name] {
			log.Debugw("Skipping cluster not on the allow-list", "cluster", name)
			continue
		}

		restCfg, err := clientcmd.NewNonInteractiveClientConfig(*raw, name, &clientcmd.ConfigOverrides{}, nil).ClientConfig()
		if err != nil {
			log.Warnw("Skipping cluster, failed to resolve credentials", "cluster", name, zap.Error(err))
			continue
		}

		dyn, err := dynamic.NewForConfig(restCfg)
		if err != nil {
			log.Warnw("Skipping cluster, failed to build client", "cluster", name, zap.Error(err))
			continue
		}

		clusters = append(clusters, NewCluster(name, restCfg.Host, dyn))
	}

	return clusters, nil
}
