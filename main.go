/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"fmt"

	"github.com/webui-adk/adkctl/cmd"
	"github.com/webui-adk/adkctl/pkg"
)

func main() {
	if _, err := pkg.LoadSettings(); err != nil {
		fmt.Println(err)
		return
	}
	cmd.Execute()
}
