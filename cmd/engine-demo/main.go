// Command engine-demo runs a small demo graph (sine into gain, or sine into
// a synthetic-IR reverb into gain) through the scheduler, driven by a
// PortAudio device, with optional TUI and web status boards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audiograph/audio/view"
	"audiograph/audioio"
	"audiograph/audioio/portaudiodevice"
	"audiograph/audioio/sampleformat"
	"audiograph/dsp/convolution"
	"audiograph/enginetui"
	"audiograph/engineweb"
	"audiograph/graph"
	"audiograph/nodes"
	"audiograph/scheduler"
)

func main() {
	sampleRate := flag.Float64("rate", 44100, "sample rate in Hz")
	channels := flag.Int("channels", 2, "channel count")
	blockSize := flag.Int("block", 256, "block size in frames")
	freq := flag.Float64("freq", 440, "sine generator frequency in Hz")
	gain := flag.Float64("gain", 0.5, "final gain stage level")
	reverbOn := flag.Bool("reverb", false, "insert a synthetic-IR convolution reverb stage")
	webPort := flag.Int("web-port", 0, "engineweb status port; 0 disables the web server")
	tui := flag.Bool("tui", false, "show the enginetui status board instead of logging")
	logFile := flag.String("log", "engine-demo.log", "log file path")

	flag.Parse()

	file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		fmt.Printf("failed to open log file: %v\n", err) //nolint:forbidigo
		os.Exit(1)
	}
	defer file.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(file, nil)))
	slog.Info("starting engine-demo", "args", os.Args)

	s := scheduler.NewScheduler()
	if err := buildGraph(s, *freq, *gain, *reverbOn); err != nil {
		slog.Error("failed to build graph", "error", err)
		os.Exit(1)
	}

	pctx := graph.PrepareContext{
		NChannels:  *channels,
		BlockSize:  *blockSize,
		SampleRate: *sampleRate,
		Access:     view.Interleaved,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := s.Prepare(ctx, pctx); err != nil {
		slog.Error("prepare failed", "error", err)
		os.Exit(1)
	}

	if *webPort != 0 {
		webServer := engineweb.NewServer(s.Graph(), *webPort, 50*time.Millisecond)
		go func() {
			if err := webServer.Start(); err != nil {
				slog.Error("engineweb server stopped", "error", err)
			}
		}()
	}

	dev := portaudiodevice.New()
	devPctx := audioio.PrepareContext{
		NChannels:  *channels,
		BlockSize:  *blockSize,
		SampleRate: *sampleRate,
		Access:     view.Interleaved,
		ByteRate:   4,
	}
	if err := dev.Prepare(devPctx); err != nil {
		slog.Error("device prepare failed", "error", err)
		os.Exit(1)
	}
	defer dev.Close()

	sf := sampleformat.Format{Kind: sampleformat.Float, BitDepth: 32, ByteOrder: sampleformat.LittleEndian}

	cb := func(_ *audioio.CallbackContext, audio audioio.AudioData) {
		if err := s.Process(); err != nil {
			slog.Error("scheduler process failed", "error", err)
			return
		}
		out, err := s.OutputBuffer()
		if err != nil {
			slog.Error("output buffer unavailable", "error", err)
			return
		}

		frames := audio.Frames(sf.ByteRate())
		bytesPerFrame := audio.Channels * sf.ByteRate()
		for f := 0; f < frames; f++ {
			for c := 0; c < audio.Channels && c < out.NChannels(); c++ {
				sample := out.GetView(c).At(f % *blockSize)
				_ = sampleformat.Encode(sf, audio.Buffer[f*bytesPerFrame+c*sf.ByteRate():], sample)
			}
		}
	}

	loop := audioio.NewLoop(dev, devPctx, cb, 20*time.Millisecond)

	if *tui {
		go func() {
			if err := enginetui.Run(s.Graph(), 50*time.Millisecond); err != nil {
				slog.Error("enginetui stopped", "error", err)
			}
			cancel()
		}()
	}

	if err := loop.Run(ctx); err != nil {
		slog.Error("callback loop exited", "error", err)
		os.Exit(1)
	}
}

func buildGraph(s *scheduler.Scheduler, freq, gain float64, reverbOn bool) error {
	if !reverbOn {
		return nodes.BuildGraph(s, freq, 1.0, float32(gain))
	}

	reverb := convolution.NewConvolutionReverb(44100, 2)
	reverb.SetWetLevel(0.5)
	reverb.SetDryLevel(0.5)
	convNode := nodes.NewConvolutionNode(reverb)
	return nodes.BuildReverbGraph(s, freq, 1.0, convNode, float32(gain))
}
