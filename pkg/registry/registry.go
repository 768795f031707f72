package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/registry"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// Client wraps the helm OCI registry client for publishing the packaged
// webui-adk chart.
type Client struct {
	reg *registry.Client
}

func New(plainHTTP bool) (*Client, error) {
	var opts []registry.ClientOption
	if plainHTTP {
		opts = append(opts, registry.ClientOptPlainHTTP())
	}
	reg, err := registry.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}
	return &Client{reg: reg}, nil
}

// Login authenticates against one registry host and persists the credential
// in helm's registry config so later pushes reuse it.
func (c *Client) Login(host, username, password string) error {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")

	credentialsFile := filepath.Join(helmConfigDir(), "registry", "config.json")
	if err := os.MkdirAll(filepath.Dir(credentialsFile), 0755); err != nil {
		return fmt.Errorf("failed to create helm config directory: %w", err)
	}
	store, err := credentials.NewFileStore(credentialsFile)
	if err != nil {
		return fmt.Errorf("failed to create credential store: %w", err)
	}
	cred := auth.Credential{Username: username, Password: password}
	if err := store.Put(context.Background(), host, cred); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	if err := c.reg.Login(host, registry.LoginOptBasicAuth(username, password)); err != nil {
		return fmt.Errorf("authentication test failed: %w", err)
	}
	return nil
}

// Package wraps the rendered manifest stream into a single-template chart
// and writes the chart archive into destDir. The templates are already fully
// rendered; the chart is just the transport format the runbook's helm
// commands expect.
func Package(name, version, manifest, destDir string) (string, error) {
	if name == "" || version == "" {
		return "", fmt.Errorf("chart name and version are required")
	}
	ch := &chart.Chart{
		Metadata: &chart.Metadata{
			APIVersion:  chart.APIVersionV2,
			Name:        name,
			Version:     version,
			Description: "Rendered webui-adk release manifests",
		},
		Templates: []*chart.File{
			{Name: "templates/manifests.yaml", Data: []byte(manifest)},
		},
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create chart output dir: %w", err)
	}
	path, err := chartutil.Save(ch, destDir)
	if err != nil {
		return "", fmt.Errorf("failed to package chart: %w", err)
	}
	return path, nil
}

// Push uploads a packaged chart archive to an OCI reference like
// registry.example.com/charts/webui-adk:1.2.3.
func (c *Client) Push(archivePath, ref string) error {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("failed to read chart archive: %w", err)
	}
	if _, err := c.reg.Push(data, ref); err != nil {
		return fmt.Errorf("failed to push chart to %s: %w", ref, err)
	}
	return nil
}

func helmConfigDir() string {
	if helmConfig := os.Getenv("HELM_CONFIG_HOME"); helmConfig != "" {
		return helmConfig
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "helm")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "helm")
}
