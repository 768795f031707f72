/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/webui-adk/adkctl/pkg"
	"github.com/webui-adk/adkctl/pkg/registry"
)

// pushCmd represents the push command
var pushCmd = &cobra.Command{
	Use:   "push <archive>",
	Short: "Push a packaged chart archive to an OCI registry",
	Long: `
The push command uploads a chart archive produced by package to an OCI registry reference.
The default registry comes from ADKCTL_REGISTRY; --ref overrides the full reference.

Usage:
adkctl push dist/webui-adk-1.2.3.tgz --ref oci://registry.example.com/charts/webui-adk:1.2.3
	`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ref, _ := cmd.Flags().GetString("ref")
		if ref == "" {
			if pkg.Settings.Registry == "" {
				log.Error("no --ref given and ADKCTL_REGISTRY is not set")
				return
			}
			ref = fmt.Sprintf("%s/%s", pkg.Settings.Registry, pkg.Settings.ChartName)
		}
		plainHTTP, _ := cmd.Flags().GetBool("plain-http")
		client, err := registry.New(plainHTTP)
		if err != nil {
			log.Errorf("error initializing registry client: %s", err)
			return
		}
		if err := client.Push(args[0], ref); err != nil {
			log.Errorf("error pushing chart: %s", err)
			return
		}
		log.Infof("pushed %s to %s", args[0], ref)
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().String("ref", "", "Full OCI reference to push to")
	pushCmd.Flags().Bool("plain-http", false, "Use plain HTTP for the registry")
}
