package main

import (
	"context"
	"fmt"

	"github.com/tdex-network/watchonly/internal/core/domain"
	fileexportsource "github.com/tdex-network/watchonly/internal/infrastructure/exportsource/file"
	"github.com/urfave/cli/v2"
)

var descriptors = cli.Command{
	Name:      "descriptors",
	Usage:     "print the output descriptors of a Coldcard export file",
	ArgsUsage: "<export-file>",
	Action:    descriptorsAction,
}

func descriptorsAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	export, err := loadExport(ctx.Context, ctx.Args().First())
	if err != nil {
		return err
	}
	external, change, err := domain.DeriveDescriptors(export)
	if err != nil {
		return err
	}
	firstAddress, err := external.DeriveAddress(0, export.Network.HDParams())
	if err != nil {
		return err
	}

	printJSON(map[string]interface{}{
		"network":     export.Network.String(),
		"fingerprint": export.MasterFingerprint,
		"path":        export.DerivationPath.String(),
		"external":    external.String(),
		"change":      change.String(),
		"first_address": map[string]interface{}{
			"derived":  firstAddress,
			"exported": export.FirstAddress,
			"match":    firstAddress == export.FirstAddress,
		},
	})
	return nil
}

func loadExport(ctx context.Context, path string) (*domain.ExportDocument, error) {
	source, err := fileexportsource.NewExportSource(path)
	if err != nil {
		return nil, err
	}
	raw, err := source.Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrExportSource, err)
	}
	return domain.ParseExport(raw)
}
