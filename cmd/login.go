/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/webui-adk/adkctl/pkg/registry"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate to the chart registry",
	Long: `
adkctl reuses the credentials your container engine already holds.
Make sure docker or podman is logged into the registry; login picks up the same creds and stores them for the chart client.
	`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := cmd.Flags().GetString("engine")
		if err != nil {
			log.Errorf("error reading engine flag: %s", err)
			return
		}
		plainHTTP, _ := cmd.Flags().GetBool("plain-http")
		client, err := registry.New(plainHTTP)
		if err != nil {
			log.Errorf("error initializing registry client: %s", err)
			return
		}
		if err := client.LoginFromDockerConfig(engine); err != nil {
			log.Errorf("error authenticating to registry: %s", err)
			return
		}
		log.Info("login completed")
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("engine", "e", "docker", "Select between docker and podman")
	loginCmd.Flags().Bool("plain-http", false, "Use plain HTTP for the registry")
}
