/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/webui-adk/adkctl/pkg"
	"github.com/webui-adk/adkctl/pkg/manifests"
	"github.com/webui-adk/adkctl/pkg/store"
	"github.com/webui-adk/adkctl/pkg/values"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the release manifests from values files",
	Long: `
The render command loads the base values file plus any environment override files (production, local, quota), merges them last-wins, applies --set overrides, expands ${VAR} placeholders from the environment, and prints the full manifest stream.

With --commit the output is written to the manifest store and committed as a snapshot instead of printed.

Usage:
adkctl render -f values.yaml -f values-production.yaml --set ingress.host=app.example.com
	`,
	Run: func(cmd *cobra.Command, args []string) {
		vals, manifest, err := renderFromFlags(cmd)
		if err != nil {
			log.Errorf("render failed: %s", err)
			return
		}
		commit, _ := cmd.Flags().GetBool("commit")
		if !commit {
			fmt.Print(manifest)
			return
		}
		s, err := store.Open(pkg.Settings.ManifestDir)
		if err != nil {
			log.Errorf("error opening manifest store: %s", err)
			return
		}
		defer s.Close()
		path, err := s.WriteRelease(vals.ReleaseName, manifest)
		if err != nil {
			log.Errorf("error writing manifests: %s", err)
			return
		}
		oid, err := s.Snapshot(context.Background(), fmt.Sprintf("render %s", vals.ReleaseName))
		if err != nil {
			log.Errorf("error committing snapshot: %s", err)
			return
		}
		log.WithField("commit", oid).Infof("manifests written to %s", path)
	},
}

func renderFromFlags(cmd *cobra.Command) (*values.Values, string, error) {
	files, err := cmd.Flags().GetStringSlice("values")
	if err != nil {
		return nil, "", fmt.Errorf("error reading values flag: %w", err)
	}
	set, err := cmd.Flags().GetStringSlice("set")
	if err != nil {
		return nil, "", fmt.Errorf("error reading set flag: %w", err)
	}
	passthrough, err := cmd.Flags().GetBool("env-passthrough")
	if err != nil {
		return nil, "", fmt.Errorf("error reading env-passthrough flag: %w", err)
	}
	policy := values.ExpandStrict
	if passthrough || !pkg.Settings.ExpandStrict {
		policy = values.ExpandPassthrough
	}
	vals, err := values.Load(files, values.Options{Set: set, Expand: policy})
	if err != nil {
		return nil, "", err
	}
	manifest, err := manifests.RenderAll(vals)
	if err != nil {
		return nil, "", err
	}
	return vals, manifest, nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringSliceP("values", "f", []string{"values.yaml"}, "Values files, later files override earlier ones (can specify multiple)")
	renderCmd.Flags().StringSliceP("set", "s", []string{}, "Set values on the command line (can specify multiple)")
	renderCmd.Flags().Bool("env-passthrough", false, "Keep unresolved ${VAR} placeholders instead of failing")
	renderCmd.Flags().Bool("commit", false, "Write to the manifest store and commit a snapshot")
}
