// Command specbleach runs one of the three denoiser variants over a mono
// WAV file. It is an example driver, not part of the library: sound-file
// I/O and flag parsing are explicitly out of the core engine's scope.
package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/pflag"

	"github.com/ham-dsp/specbleach"
)

const processBufferFrames = 4096

func main() {
	variant := pflag.StringP("variant", "m", "adaptive", "Denoiser variant: profile, adaptive, or 2d.")
	configPath := pflag.StringP("config", "c", "", "YAML config file (engine + parameter overrides).")
	inPath := pflag.StringP("in", "i", "", "Input WAV file (mono, 16- or 32-bit PCM).")
	outPath := pflag.StringP("out", "o", "", "Output WAV file.")
	learn := pflag.BoolP("learn", "l", false, "profile variant only: run a learn pass over the whole input first.")
	help := pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s --in in.wav --out out.wav [--variant profile|adaptive|2d] [--config cfg.yaml]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}
	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "--in and --out are required")
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(*variant, *configPath, *inPath, *outPath, *learn); err != nil {
		fmt.Fprintf(os.Stderr, "specbleach: %v\n", err)
		os.Exit(1)
	}
}

func run(variant, configPath, inPath, outPath string, learn bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	inFile, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer inFile.Close()

	dec := wav.NewDecoder(inFile)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return fmt.Errorf("%s is not a valid WAV file", inPath)
	}
	if dec.NumChans != 1 {
		return fmt.Errorf("%s has %d channels; this engine is single-channel only", inPath, dec.NumChans)
	}
	sampleRate := dec.SampleRate
	bitDepth := dec.BitDepth

	samples, err := readAllSamples(dec)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}

	h, err := newHandle(variant, sampleRate, cfg)
	if err != nil {
		return err
	}
	defer h.Free()

	if learn {
		if variant != "profile" {
			return fmt.Errorf("--learn only applies to the profile variant")
		}
		learnParams := cfg.parameterBlock()
		learnParams.LearnNoise = 1
		if !h.LoadParameters(learnParams) {
			return fmt.Errorf("rejected learn-pass parameter block")
		}
		scratch := make([]float64, len(samples))
		if !h.Process(samples, scratch) {
			return fmt.Errorf("learn pass failed")
		}
	}

	if !h.LoadParameters(cfg.parameterBlock()) {
		return fmt.Errorf("rejected reduce-pass parameter block")
	}

	out := make([]float64, len(samples))
	for start := 0; start < len(samples); start += processBufferFrames {
		end := start + processBufferFrames
		if end > len(samples) {
			end = len(samples)
		}
		if !h.Process(samples[start:end], out[start:end]) {
			return fmt.Errorf("Process failed at sample %d", start)
		}
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer outFile.Close()

	return writeAllSamples(outFile, out, sampleRate, bitDepth)
}

// handle is the subset of {Profile,Adaptive,TwoD}Handle's surface the CLI
// drives; each variant implements it (TwoDHandle and ProfileHandle also
// satisfy a larger surface with profile management, unused here).
type handle interface {
	Free()
	LoadParameters(specbleach.ParameterBlock) bool
	Process(in, out []float64) bool
}

func newHandle(variant string, sampleRate int, cfg Config) (handle, error) {
	engineCfg := cfg.engineConfig()
	frameMs := float32(cfg.FrameSizeMs)
	switch variant {
	case "profile":
		return specbleach.InitializeProfile(uint32(sampleRate), frameMs, engineCfg)
	case "2d":
		return specbleach.InitializeTwoD(uint32(sampleRate), frameMs, engineCfg)
	case "adaptive", "":
		return specbleach.InitializeAdaptive(uint32(sampleRate), frameMs, engineCfg)
	default:
		return nil, fmt.Errorf("unknown variant %q (want profile, adaptive, or 2d)", variant)
	}
}

// readAllSamples decodes the whole PCM payload and normalizes it to
// float64 in [-1, 1].
func readAllSamples(dec *wav.Decoder) ([]float64, error) {
	buf := &audio.IntBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: int(dec.SampleRate)}}
	var out []float64
	chunk := make([]int, processBufferFrames)
	full := dbToFull(int(dec.BitDepth))
	for {
		buf.Data = chunk
		n, err := dec.PCMBuffer(buf)
		if n > 0 {
			for _, s := range buf.Data[:n] {
				out = append(out, float64(s)/full)
			}
		}
		if err != nil || n == 0 {
			break
		}
	}
	return out, nil
}

// writeAllSamples re-quantizes float64 samples in [-1, 1] to bitDepth-bit
// PCM and writes a mono WAV file.
func writeAllSamples(w *os.File, samples []float64, sampleRate int, bitDepth int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, 1)
	full := dbToFull(bitDepth)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = int(clampUnit(s) * full)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}

func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

func dbToFull(bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	return float64(int(1) << (bitDepth - 1))
}
