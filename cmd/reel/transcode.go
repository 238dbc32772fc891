package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reelcore/reel/avbridge"
	"github.com/reelcore/reel/media"
)

func newTranscodeCmd(cfg Config, logger zerolog.Logger) *cobra.Command {
	var (
		width, height int
		realtime      bool
		timeBaseDen   int32
	)

	cmd := &cobra.Command{
		Use:   "transcode <input> <output>",
		Short: "Decode an input file and re-encode it as H.264",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscode(cfg, logger, args[0], args[1], width, height, realtime, timeBaseDen)
		},
	}

	cmd.Flags().IntVar(&width, "width", 1280, "output width")
	cmd.Flags().IntVar(&height, "height", 720, "output height")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "apply zero-latency encode tuning")
	cmd.Flags().Int32Var(&timeBaseDen, "fps", 24, "output frame rate; frame i is stamped at i/fps seconds")

	return cmd
}

func runTranscode(cfg Config, logger zerolog.Logger, inPath, outPath string, width, height int, realtime bool, fps int32) error {
	avbridge.Init()

	readOpts := avbridge.NewOptions()
	if cfg.RWTimeoutMicros > 0 {
		readOpts.Set("rw_timeout", fmt.Sprintf("%d", cfg.RWTimeoutMicros))
	}

	reader, err := media.Open(avbridge.NewLocation(inPath), readOpts)
	if err != nil {
		return fmt.Errorf("transcode: open input: %w", err)
	}
	defer reader.Close()

	log := logger.With().Str("pipeline_id", reader.PipelineID()).Str("input", inPath).Str("output", outPath).Logger()

	streamIdx, err := reader.BestVideoStreamIndex()
	if err != nil {
		return fmt.Errorf("transcode: find video stream: %w", err)
	}

	decoder, err := media.NewDecoderSplit(reader, streamIdx)
	if err != nil {
		return fmt.Errorf("transcode: open decoder: %w", err)
	}
	defer decoder.Close()

	writer, err := media.NewFileWriter("", avbridge.NewLocation(outPath))
	if err != nil {
		return fmt.Errorf("transcode: open writer: %w", err)
	}
	defer writer.Close()

	inW, inH := decoder.OutputDimensions()
	settings := media.PresetH264YUV420P(width, height, realtime)
	builder := media.NewEncoderBuilder(settings, media.WithInputDimensions(inW, inH))
	encoder, err := builder.Build(writer)
	if err != nil {
		return fmt.Errorf("transcode: build encoder: %w", err)
	}
	defer encoder.Close()

	// EncodeRaw takes PTS in the encoder's own time base, which Build sets
	// to 1/AV_TIME_BASE; frame i is presented at i/fps seconds.
	frameTimeBase := avbridge.Rational{Num: 1, Den: fps}
	encoderTimeBase := avbridge.Rational{Num: 1, Den: avbridge.AVTimeBase}
	count := 0
	for {
		_, frame, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, avbridge.ErrDecodeExhausted) || errors.Is(err, avbridge.ErrReadExhausted) {
				break
			}
			return fmt.Errorf("transcode: decode: %w", err)
		}

		scaled, serr := scaleToRGB24(frame)
		frame.Close()
		if serr != nil {
			return fmt.Errorf("transcode: scale to rgb24: %w", serr)
		}
		pts := avbridge.NewTime(int64(count), frameTimeBase).AlignedWith(encoderTimeBase)
		if err := encoder.EncodeRaw(rgbFrameToEncoderInput(scaled, pts, encoderTimeBase)); err != nil {
			scaled.Close()
			return fmt.Errorf("transcode: encode: %w", err)
		}
		count++
	}

	if err := encoder.Finish(); err != nil {
		return fmt.Errorf("transcode: finish: %w", err)
	}

	log.Info().Int("frames", count).Msg("transcode complete")
	return nil
}

// scaleToRGB24 converts frame into an independent RGB24 frame of the same
// dimensions, used as the encoder's raw-path input. Closing the returned
// frame is the caller's responsibility.
func scaleToRGB24(frame *avbridge.RawFrame) (*avbridge.RawFrame, error) {
	scaler, err := avbridge.NewScaler(frame.Width(), frame.Height(), frame.Format(), frame.Width(), frame.Height(), avbridge.PixFmtRGB24)
	if err != nil {
		return nil, err
	}
	defer scaler.Close()
	return scaler.Scale(frame)
}

func rgbFrameToEncoderInput(frame *avbridge.RawFrame, pts avbridge.Time, base avbridge.Rational) *avbridge.RawFrame {
	if v, ok := pts.IntoValue(); ok {
		frame.SetPTS(v)
	}
	frame.SetTimeBase(base)
	return frame
}
