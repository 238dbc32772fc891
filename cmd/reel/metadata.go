package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reelcore/reel/avbridge"
	"github.com/reelcore/reel/media"
)

func newMetadataCmd(cfg Config, logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <input>",
		Short: "Print the best video stream's codec parameters and time base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetadata(cfg, logger, args[0], cmd)
		},
	}
}

func runMetadata(cfg Config, logger zerolog.Logger, inPath string, cmd *cobra.Command) error {
	avbridge.Init()

	reader, err := media.Open(avbridge.NewLocation(inPath), avbridge.NewOptions())
	if err != nil {
		return fmt.Errorf("metadata: open input: %w", err)
	}
	defer reader.Close()

	idx, err := reader.BestVideoStreamIndex()
	if err != nil {
		return fmt.Errorf("metadata: find video stream: %w", err)
	}
	info, err := reader.StreamInfo(idx)
	if err != nil {
		return fmt.Errorf("metadata: stream info: %w", err)
	}
	defer info.CodecParameters.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "stream_index: %d\n", info.StreamIndex)
	fmt.Fprintf(cmd.OutOrStdout(), "codec_id: %d\n", info.CodecParameters.CodecID().Raw())
	fmt.Fprintf(cmd.OutOrStdout(), "time_base: %d/%d\n", info.TimeBase.Num, info.TimeBase.Den)
	fmt.Fprintf(cmd.OutOrStdout(), "supported_output_formats: %v\n", media.SupportedOutputFormats())
	return nil
}
