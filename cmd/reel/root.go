package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg Config, logger zerolog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "reel",
		Short: "reel",
		Long:  "reel decodes, encodes, and transcodes video over a cgo FFmpeg bridge.",
	}

	root.AddCommand(newTranscodeCmd(cfg, logger))
	root.AddCommand(newMetadataCmd(cfg, logger))
	root.AddCommand(newDecodePNGCmd(cfg, logger))

	return root
}
