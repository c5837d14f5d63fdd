package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/watchonly/internal/config"
	"github.com/tdex-network/watchonly/internal/core/application/importer"
	"github.com/tdex-network/watchonly/internal/core/application/wallet"
	"github.com/tdex-network/watchonly/internal/core/domain"
	"github.com/tdex-network/watchonly/internal/core/ports"
	fileexportsource "github.com/tdex-network/watchonly/internal/infrastructure/exportsource/file"
	"github.com/tdex-network/watchonly/pkg/mathutil"
	"github.com/tdex-network/watchonly/pkg/stats"
	"github.com/urfave/cli/v2"
)

var importWallet = cli.Command{
	Name:      "import",
	Usage:     "import a Coldcard export file as a watch-only wallet and sync it",
	ArgsUsage: "<export-file>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "confirm the import without prompting",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "keep syncing the wallet every SYNC_INTERVAL until interrupted",
		},
	},
	Action: importAction,
}

func importAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics, err := stats.NewSyncMetrics(reg)
	if err != nil {
		return err
	}
	source, err := fileexportsource.NewExportSource(ctx.Args().First())
	if err != nil {
		return err
	}
	opener, err := newWalletOpener(metrics, logProgress)
	if err != nil {
		return err
	}
	machine, err := importer.NewMachine(source, opener)
	if err != nil {
		return err
	}
	if err := machine.Start(runCtx); err != nil {
		return err
	}
	defer machine.Stop()

	watch := ctx.Bool("watch")
	if watch {
		if addr := config.GetString(config.MetricsAddrKey); addr != "" {
			serveMetrics(runCtx, addr, reg)
		}
		enableProfiler(runCtx, reg)
	}

	if err := machine.Dispatch(importer.ExportRequested{}); err != nil {
		return err
	}

	var ticker *time.Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-runCtx.Done():
			log.Info("interrupted")
			return nil

		case <-tick:
			if err := machine.Dispatch(importer.SyncRequested{}); err != nil {
				return err
			}

		case u, ok := <-machine.Updates():
			if !ok {
				return nil
			}

			switch e := u.Event.(type) {
			case importer.ExportLoaded:
				if u.Err != nil {
					return u.Err
				}
				s := u.State.(importer.ConfirmingExport)
				next, err := confirmImport(s.Export, ctx.Bool("yes"))
				if err != nil {
					return err
				}
				if err := machine.Dispatch(next); err != nil {
					return err
				}

			case importer.ImportCancelled:
				fmt.Println("import cancelled")
				return nil

			case importer.ImportConfirmed:
				if u.Err != nil {
					return u.Err
				}
				s := u.State.(importer.ActiveWallet)
				external, change := s.Session.Descriptors()
				fmt.Printf("wallet imported\n  external: %s\n  change:   %s\n", external, change)

			case importer.SyncCompleted:
				if u.Err != nil {
					if !watch {
						return u.Err
					}
					log.WithError(u.Err).Warn("sync failed, retrying at next interval")
				} else if s, ok := u.State.(importer.ActiveWallet); ok && s.Session.ID() == e.SessionID {
					if err := printWallet(runCtx, s.Session); err != nil {
						return err
					}
				}
				if !watch {
					return nil
				}
				if ticker == nil {
					ticker = time.NewTicker(config.GetSeconds(config.SyncIntervalKey))
					tick = ticker.C
				}

			default:
				if u.Err != nil {
					return u.Err
				}
			}
		}
	}
}

// confirmImport prints the summary of the export and asks the user whether
// to import it, unless already confirmed.
func confirmImport(
	export *domain.ExportDocument, confirmed bool,
) (importer.Event, error) {
	fmt.Printf(
		"network: %s\nfingerprint: %s\npath: %s\nxpub: %s\nfirst address: %s\n",
		export.Network, export.MasterFingerprint, export.DerivationPath,
		export.AccountXpub, export.FirstAddress,
	)
	if confirmed {
		return importer.ImportConfirmed{}, nil
	}

	fmt.Print("import this wallet? [y/N] ")
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && len(answer) <= 0 {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return importer.ImportConfirmed{}, nil
	default:
		return importer.ImportCancelled{}, nil
	}
}

func printWallet(ctx context.Context, session *wallet.Session) error {
	balances, err := session.Balances(ctx)
	if err != nil {
		return err
	}
	balance, err := session.Balance(ctx)
	if err != nil {
		return err
	}
	height, err := session.TipHeight(ctx)
	if err != nil {
		return err
	}
	addr, err := session.NextReceiveAddress(ctx)
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"balance":         mathutil.FormatBtc(uint64(balance)),
		"confirmed":       mathutil.FormatBtc(balances.Confirmed),
		"unconfirmed":     mathutil.FormatBtc(balances.Unconfirmed),
		"tip_height":      height,
		"receive_address": addr,
		"last_sync":       session.LastSyncAt().Format(time.RFC3339),
	})
	return nil
}

func logProgress(p ports.SyncProgress) {
	log.WithFields(log.Fields{
		"branch":  p.Branch.String(),
		"scanned": p.ScannedAddresses,
		"used":    p.UsedAddresses,
	}).Info("syncing")
}
