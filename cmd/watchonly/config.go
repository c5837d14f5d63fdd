package main

import (
	"fmt"

	"github.com/tdex-network/watchonly/internal/config"
	"github.com/urfave/cli/v2"
)

var configCmd = cli.Command{
	Name:   "config",
	Usage:  "Print the current configuration",
	Action: configAction,
}

func configAction(_ *cli.Context) error {
	for _, key := range config.Keys() {
		fmt.Printf("%s: %s\n", key, config.GetString(key))
	}
	return nil
}
