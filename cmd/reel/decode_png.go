package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reelcore/reel/avbridge"
	"github.com/reelcore/reel/media"
)

func newDecodePNGCmd(cfg Config, logger zerolog.Logger) *cobra.Command {
	var (
		outDir    string
		maxFrames int
	)

	cmd := &cobra.Command{
		Use:   "decode-png <input>",
		Short: "Decode a video stream and save each frame as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecodePNG(cfg, logger, args[0], outDir, maxFrames)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "output directory for PNG files")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 0, "stop after this many frames (0 = no limit)")

	return cmd
}

func runDecodePNG(cfg Config, logger zerolog.Logger, inPath, outDir string, maxFrames int) error {
	avbridge.Init()

	readOpts := avbridge.NewOptions()
	if cfg.RWTimeoutMicros > 0 {
		readOpts.Set("rw_timeout", fmt.Sprintf("%d", cfg.RWTimeoutMicros))
	}

	reader, err := media.Open(avbridge.NewLocation(inPath), readOpts)
	if err != nil {
		return fmt.Errorf("decode-png: open input: %w", err)
	}
	defer reader.Close()

	log := logger.With().Str("pipeline_id", reader.PipelineID()).Logger()

	streamIdx, err := reader.BestVideoStreamIndex()
	if err != nil {
		return fmt.Errorf("decode-png: find video stream: %w", err)
	}

	decoder, err := media.NewDecoderSplit(reader, streamIdx)
	if err != nil {
		return fmt.Errorf("decode-png: open decoder: %w", err)
	}
	defer decoder.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("decode-png: create output dir: %w", err)
	}

	count := 0
	for maxFrames == 0 || count < maxFrames {
		_, frame, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, avbridge.ErrDecodeExhausted) || errors.Is(err, avbridge.ErrReadExhausted) {
				break
			}
			return fmt.Errorf("decode-png: decode: %w", err)
		}

		rgb, serr := scaleToRGB24(frame)
		frame.Close()
		if serr != nil {
			return fmt.Errorf("decode-png: scale to rgb24: %w", serr)
		}

		img := rgb24ToImage(rgb)
		rgb.Close()

		outPath := filepath.Join(outDir, fmt.Sprintf("frame-%05d.png", count))
		if err := writePNG(outPath, img); err != nil {
			return fmt.Errorf("decode-png: write png: %w", err)
		}
		count++
	}

	log.Info().Int("frames", count).Str("out", outDir).Msg("decode-png complete")
	return nil
}

func rgb24ToImage(frame *avbridge.RawFrame) *image.RGBA {
	w, h := frame.Width(), frame.Height()
	plane := frame.Plane(0)
	linesize := frame.Linesize(0)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := plane[y*linesize : y*linesize+w*3]
		for x := 0; x < w; x++ {
			off := img.PixOffset(x, y)
			img.Pix[off] = row[x*3]
			img.Pix[off+1] = row[x*3+1]
			img.Pix[off+2] = row[x*3+2]
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
