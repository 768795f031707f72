/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "adkctl",
	Short: "Render and publish webui-adk release manifests",
	Long: `
adkctl renders the Kubernetes manifests for a webui-adk release (the Open WebUI frontend, the ADK backend sidecar, and the Ollama proxy) from layered values files.
It resolves environment placeholders, validates the ingress contract, and emits Deployment, Service, PersistentVolumeClaim, Secret, ServiceAccount, and Ingress resources in install order.

Rendered manifests can be written to a git-backed manifest store for diffing and rollback, or packaged as a chart and pushed to an OCI registry.
It never talks to a cluster: applying the output stays with kubectl or helm.
	`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
