// Command reel-bench measures decode and transcode throughput against a
// real input file, reporting frame timing and allocation statistics for
// the decode/scale/encode pipeline.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"time"

	"github.com/reelcore/reel/avbridge"
	"github.com/reelcore/reel/media"
)

// BenchmarkConfig parameterizes a single run.
type BenchmarkConfig struct {
	InputPath  string
	OutputPath string
	Width      int
	Height     int
	Realtime   bool
	MaxFrames  int
	CPUProfile string
	MemProfile string
	TraceFile  string
	Verbose    bool
}

// BenchmarkResults mirrors the capture-loop benchmark's statistics,
// retargeted at encoded frames instead of captured ones.
type BenchmarkResults struct {
	FramesProcessed  int
	Duration         time.Duration
	AvgFPS           float64
	MinFrameTime     time.Duration
	MaxFrameTime     time.Duration
	AvgFrameTime     time.Duration
	MemAllocBytes    uint64
	MemAllocObjects  uint64
	NumGC            uint32
	GCPauseTotal     time.Duration
}

func main() {
	input := flag.String("input", "", "input media file (required)")
	output := flag.String("output", "", "output file to transcode into (temp file if empty)")
	width := flag.Int("width", 1280, "output width")
	height := flag.Int("height", 720, "output height")
	realtime := flag.Bool("realtime", false, "apply zero-latency encode tuning")
	maxFrames := flag.Int("max-frames", 0, "stop after this many frames (0 = no limit)")
	verbose := flag.Bool("verbose", false, "log progress every 100 frames")
	cpuprofile := flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	tracefile := flag.String("trace", "", "write execution trace to file")
	flag.Parse()

	if *input == "" {
		log.Fatal("-input is required")
	}

	outPath := *output
	if outPath == "" {
		f, err := os.CreateTemp("", "reel-bench-*.mp4")
		if err != nil {
			log.Fatalf("create temp output: %v", err)
		}
		outPath = f.Name()
		f.Close()
		defer os.Remove(outPath)
	}

	config := BenchmarkConfig{
		InputPath:  *input,
		OutputPath: outPath,
		Width:      *width,
		Height:     *height,
		Realtime:   *realtime,
		MaxFrames:  *maxFrames,
		CPUProfile: *cpuprofile,
		MemProfile: *memprofile,
		TraceFile:  *tracefile,
		Verbose:    *verbose,
	}

	if config.CPUProfile != "" {
		f, err := os.Create(config.CPUProfile)
		if err != nil {
			log.Fatalf("create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if config.TraceFile != "" {
		f, err := os.Create(config.TraceFile)
		if err != nil {
			log.Fatalf("create trace file: %v", err)
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			log.Fatalf("start trace: %v", err)
		}
		defer trace.Stop()
	}

	results, err := runTranscodeBenchmark(config)
	if err != nil {
		log.Fatalf("benchmark: %v", err)
	}

	if config.MemProfile != "" {
		f, err := os.Create(config.MemProfile)
		if err != nil {
			log.Fatalf("create memory profile: %v", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("write memory profile: %v", err)
		}
	}

	printResults(config, results)
}

func runTranscodeBenchmark(config BenchmarkConfig) (BenchmarkResults, error) {
	avbridge.Init()

	reader, err := media.Open(avbridge.NewLocation(config.InputPath), avbridge.NewOptions())
	if err != nil {
		return BenchmarkResults{}, fmt.Errorf("open input: %w", err)
	}
	defer reader.Close()

	streamIdx, err := reader.BestVideoStreamIndex()
	if err != nil {
		return BenchmarkResults{}, fmt.Errorf("find video stream: %w", err)
	}

	decoder, err := media.NewDecoderSplit(reader, streamIdx)
	if err != nil {
		return BenchmarkResults{}, fmt.Errorf("open decoder: %w", err)
	}
	defer decoder.Close()

	writer, err := media.NewFileWriter("", avbridge.NewLocation(config.OutputPath))
	if err != nil {
		return BenchmarkResults{}, fmt.Errorf("open writer: %w", err)
	}
	defer writer.Close()

	inW, inH := decoder.OutputDimensions()
	settings := media.PresetH264YUV420P(config.Width, config.Height, config.Realtime)
	builder := media.NewEncoderBuilder(settings, media.WithInputDimensions(inW, inH))
	encoder, err := builder.Build(writer)
	if err != nil {
		return BenchmarkResults{}, fmt.Errorf("build encoder: %w", err)
	}
	defer encoder.Close()

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	results := BenchmarkResults{}
	frameTimes := make([]time.Duration, 0, 1000)
	lastFrameTime := time.Now()
	start := time.Now()
	// EncodeRaw takes PTS in the encoder's own time base, which Build sets
	// to 1/AV_TIME_BASE; frames are stamped at a nominal 30 fps.
	frameTimeBase := avbridge.Rational{Num: 1, Den: 30}
	encoderTimeBase := avbridge.Rational{Num: 1, Den: avbridge.AVTimeBase}

	for config.MaxFrames == 0 || results.FramesProcessed < config.MaxFrames {
		_, frame, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, avbridge.ErrDecodeExhausted) || errors.Is(err, avbridge.ErrReadExhausted) {
				break
			}
			return results, fmt.Errorf("decode: %w", err)
		}

		scaled, err := scaleToRGB24(frame)
		frame.Close()
		if err != nil {
			return results, fmt.Errorf("scale to rgb24: %w", err)
		}

		pts := avbridge.NewTime(int64(results.FramesProcessed), frameTimeBase).AlignedWith(encoderTimeBase)
		if v, ok := pts.IntoValue(); ok {
			scaled.SetPTS(v)
		}
		scaled.SetTimeBase(encoderTimeBase)
		if err := encoder.EncodeRaw(scaled); err != nil {
			return results, fmt.Errorf("encode: %w", err)
		}

		now := time.Now()
		frameTimes = append(frameTimes, now.Sub(lastFrameTime))
		lastFrameTime = now
		results.FramesProcessed++

		if config.Verbose && results.FramesProcessed%100 == 0 {
			log.Printf("processed %d frames (%.1f fps)", results.FramesProcessed,
				float64(results.FramesProcessed)/time.Since(start).Seconds())
		}
	}

	if err := encoder.Finish(); err != nil {
		return results, fmt.Errorf("finish: %w", err)
	}

	results.Duration = time.Since(start)
	if results.FramesProcessed > 0 {
		results.AvgFPS = float64(results.FramesProcessed) / results.Duration.Seconds()
	}
	if len(frameTimes) > 1 {
		results.MinFrameTime = frameTimes[1]
		results.MaxFrameTime = frameTimes[1]
		var total time.Duration
		for i := 1; i < len(frameTimes); i++ {
			ft := frameTimes[i]
			total += ft
			if ft < results.MinFrameTime {
				results.MinFrameTime = ft
			}
			if ft > results.MaxFrameTime {
				results.MaxFrameTime = ft
			}
		}
		results.AvgFrameTime = total / time.Duration(len(frameTimes)-1)
	}

	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)
	results.MemAllocBytes = memAfter.TotalAlloc - memBefore.TotalAlloc
	results.MemAllocObjects = memAfter.Mallocs - memBefore.Mallocs
	results.NumGC = memAfter.NumGC - memBefore.NumGC
	results.GCPauseTotal = time.Duration(memAfter.PauseTotalNs - memBefore.PauseTotalNs)

	return results, nil
}

func scaleToRGB24(frame *avbridge.RawFrame) (*avbridge.RawFrame, error) {
	scaler, err := avbridge.NewScaler(frame.Width(), frame.Height(), frame.Format(), frame.Width(), frame.Height(), avbridge.PixFmtRGB24)
	if err != nil {
		return nil, err
	}
	defer scaler.Close()
	return scaler.Scale(frame)
}

func printResults(config BenchmarkConfig, r BenchmarkResults) {
	sep := strings.Repeat("=", 70)
	fmt.Println("\n" + sep)
	fmt.Println("BENCHMARK RESULTS")
	fmt.Println(sep)

	fmt.Println("\nConfiguration:")
	fmt.Printf("  Input:       %s\n", config.InputPath)
	fmt.Printf("  Output:      %s\n", config.OutputPath)
	fmt.Printf("  Resolution:  %dx%d\n", config.Width, config.Height)
	fmt.Printf("  Realtime:    %v\n", config.Realtime)

	fmt.Println("\nThroughput:")
	fmt.Printf("  Frames Processed:  %d\n", r.FramesProcessed)
	fmt.Printf("  Duration:          %v\n", r.Duration)
	fmt.Printf("  Average FPS:       %.2f\n", r.AvgFPS)

	fmt.Println("\nFrame Timing:")
	fmt.Printf("  Min Frame Time:    %v\n", r.MinFrameTime)
	fmt.Printf("  Avg Frame Time:    %v\n", r.AvgFrameTime)
	fmt.Printf("  Max Frame Time:    %v\n", r.MaxFrameTime)

	fmt.Println("\nMemory:")
	fmt.Printf("  Total Allocated:   %.2f MB\n", float64(r.MemAllocBytes)/(1024*1024))
	if r.FramesProcessed > 0 {
		fmt.Printf("  Allocs per Frame:  %.0f\n", float64(r.MemAllocObjects)/float64(r.FramesProcessed))
	}
	fmt.Printf("  GC Runs:           %d\n", r.NumGC)
	if r.NumGC > 0 {
		fmt.Printf("  Avg GC Pause:      %v\n", r.GCPauseTotal/time.Duration(r.NumGC))
	}
	fmt.Println("\n" + sep)

	if config.CPUProfile != "" {
		fmt.Printf("\nCPU Profile: %s (go tool pprof %s)\n", config.CPUProfile, config.CPUProfile)
	}
	if config.MemProfile != "" {
		fmt.Printf("Memory Profile: %s (go tool pprof %s)\n", config.MemProfile, config.MemProfile)
	}
	if config.TraceFile != "" {
		fmt.Printf("Trace File: %s (go tool trace %s)\n", config.TraceFile, config.TraceFile)
	}
}
