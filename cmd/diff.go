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
	"github.com/webui-adk/adkctl/pkg/store"
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what changed since the last snapshot",
	Long: `
The diff command renders the manifests with the current values, writes them into the manifest store working tree, and shows a unified diff against the last committed snapshot.
Nothing is committed; this is the preview step before render --commit.

Usage:
adkctl diff -f values.yaml -f values-production.yaml
	`,
	Run: func(cmd *cobra.Command, args []string) {
		vals, manifest, err := renderFromFlags(cmd)
		if err != nil {
			log.Errorf("render failed: %s", err)
			return
		}
		s, err := store.Open(pkg.Settings.ManifestDir)
		if err != nil {
			log.Errorf("error opening manifest store: %s", err)
			return
		}
		defer s.Close()
		if _, err := s.WriteRelease(vals.ReleaseName, manifest); err != nil {
			log.Errorf("error writing manifests: %s", err)
			return
		}
		diff, err := s.Diff(context.Background(), vals.ReleaseName)
		if err != nil {
			log.Errorf("error diffing manifests: %s", err)
			return
		}
		if diff == "" {
			log.Info("no changes since last snapshot")
			return
		}
		fmt.Print(diff)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringSliceP("values", "f", []string{"values.yaml"}, "Values files, later files override earlier ones (can specify multiple)")
	diffCmd.Flags().StringSliceP("set", "s", []string{}, "Set values on the command line (can specify multiple)")
	diffCmd.Flags().Bool("env-passthrough", false, "Keep unresolved ${VAR} placeholders instead of failing")
}
