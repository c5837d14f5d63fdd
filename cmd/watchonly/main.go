package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/watchonly/internal/config"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "watchonly"
	app.Usage = "Import a Coldcard export as a bitcoin watch-only wallet"
	app.Before = initConfig
	app.Commands = append(
		app.Commands,
		&descriptors,
		&importWallet,
		&configCmd,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func initConfig(_ *cli.Context) error {
	if err := config.InitConfig(); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	return nil
}

func printJSON(resp interface{}) {
	buf, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to encode response: ", err)
		return
	}
	fmt.Println(string(buf))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[watchonly] %v\n", err)
	}
	os.Exit(1)
}
