/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/webui-adk/adkctl/pkg"
	"github.com/webui-adk/adkctl/pkg/registry"
)

// packageCmd represents the package command
var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Package the rendered manifests as a chart archive",
	Long: `
The package command renders the manifests and wraps them into a chart archive (tgz) that helm can install directly.
The archive is the transport format for push; it carries the fully rendered manifests, not templates.

Usage:
adkctl package -f values.yaml --chart-version 1.2.3 --dest dist/
	`,
	Run: func(cmd *cobra.Command, args []string) {
		_, manifest, err := renderFromFlags(cmd)
		if err != nil {
			log.Errorf("render failed: %s", err)
			return
		}
		version, _ := cmd.Flags().GetString("chart-version")
		dest, _ := cmd.Flags().GetString("dest")
		path, err := registry.Package(pkg.Settings.ChartName, version, manifest, dest)
		if err != nil {
			log.Errorf("error packaging chart: %s", err)
			return
		}
		log.Infof("chart written to %s", path)
	},
}

func init() {
	rootCmd.AddCommand(packageCmd)
	packageCmd.Flags().StringSliceP("values", "f", []string{"values.yaml"}, "Values files, later files override earlier ones (can specify multiple)")
	packageCmd.Flags().StringSliceP("set", "s", []string{}, "Set values on the command line (can specify multiple)")
	packageCmd.Flags().Bool("env-passthrough", false, "Keep unresolved ${VAR} placeholders instead of failing")
	packageCmd.Flags().String("chart-version", "0.1.0", "Version for the packaged chart")
	packageCmd.Flags().String("dest", ".", "Directory to write the chart archive into")
}
