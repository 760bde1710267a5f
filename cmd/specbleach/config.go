package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ham-dsp/specbleach"
)

// Config is the on-disk engine configuration: the engine-selection fields
// LoadParameters can't carry (sample rate is taken from the input WAV; frame
// size, window, gain, band scale, and NLM geometry are fixed at
// construction), plus the full runtime ParameterBlock.
type Config struct {
	FrameSizeMs float64 `yaml:"frame_size_ms"`
	Window      string  `yaml:"window"`
	Gain        string  `yaml:"gain"`
	BandScale   string  `yaml:"band_scale"`

	NlmPast       int `yaml:"nlm_past"`
	NlmFuture     int `yaml:"nlm_future"`
	NlmPatch      int `yaml:"nlm_patch"`
	NlmPasteBlock int `yaml:"nlm_paste_block"`
	NlmFreqSearch int `yaml:"nlm_freq_search"`

	NoiseReductionMode    int     `yaml:"noise_reduction_mode"`
	ResidualListen        bool    `yaml:"residual_listen"`
	ReductionAmountDB     float64 `yaml:"reduction_amount_db"`
	SmoothingFactor       float64 `yaml:"smoothing_factor"`
	WhiteningFactor       float64 `yaml:"whitening_factor"`
	NoiseScalingType      int     `yaml:"noise_scaling_type"`
	NoiseRescaleDB        float64 `yaml:"noise_rescale_db"`
	PostFilterThresholdDB float64 `yaml:"post_filter_threshold_db"`
	NoiseEstimationMethod int     `yaml:"noise_estimation_method"`
	AdaptiveNoise         bool    `yaml:"adaptive_noise"`
	TransientProtection   bool    `yaml:"transient_protection"`
}

// defaultConfig mirrors specbleach.DefaultEngineConfig/DefaultParameterBlock
// in YAML-tagged form, so a config file only needs to override what differs.
func defaultConfig() Config {
	return Config{
		FrameSizeMs:           46,
		Window:                "hann",
		Gain:                  "wiener",
		BandScale:             "bark",
		NlmPast:               4,
		NlmFuture:             1,
		NlmPatch:              4,
		NlmPasteBlock:         2,
		NlmFreqSearch:         4,
		NoiseReductionMode:    specbleach.ModeRollingMean,
		ReductionAmountDB:     10,
		PostFilterThresholdDB: 10,
		NoiseEstimationMethod: int(specbleach.MethodLouizou),
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) windowType() specbleach.WindowType {
	switch c.Window {
	case "hamming":
		return specbleach.WindowHamming
	case "blackman":
		return specbleach.WindowBlackman
	case "vorbis":
		return specbleach.WindowVorbis
	case "cosine":
		return specbleach.WindowCosine
	case "flattop":
		return specbleach.WindowFlatTop
	case "hann", "":
		fallthrough
	default:
		return specbleach.WindowHann
	}
}

func (c Config) gainType() specbleach.GainType {
	switch c.Gain {
	case "gates":
		return specbleach.GainGates
	case "gss":
		return specbleach.GainGeneralizedSpectralSubtraction
	case "wiener", "":
		fallthrough
	default:
		return specbleach.GainWiener
	}
}

func (c Config) bandScale() specbleach.BandScale {
	if c.BandScale == "opus" {
		return specbleach.BandScaleOpus
	}
	return specbleach.BandScaleBark
}

func (c Config) engineConfig() specbleach.EngineConfig {
	cfg := specbleach.DefaultEngineConfig()
	cfg.Window = c.windowType()
	cfg.Gain = c.gainType()
	cfg.BandScale = c.bandScale()
	if c.NlmPast > 0 {
		cfg.NlmPast = c.NlmPast
	}
	if c.NlmFuture > 0 {
		cfg.NlmFuture = c.NlmFuture
	}
	if c.NlmPatch > 0 {
		cfg.NlmPatch = c.NlmPatch
	}
	if c.NlmPasteBlock > 0 {
		cfg.NlmPasteBlock = c.NlmPasteBlock
	}
	if c.NlmFreqSearch > 0 {
		cfg.NlmFreqSearch = c.NlmFreqSearch
	}
	return cfg
}

func (c Config) parameterBlock() specbleach.ParameterBlock {
	p := specbleach.DefaultParameterBlock()
	p.NoiseReductionMode = c.NoiseReductionMode
	p.ResidualListen = c.ResidualListen
	p.ReductionAmountDB = c.ReductionAmountDB
	p.SmoothingFactor = c.SmoothingFactor
	p.WhiteningFactor = c.WhiteningFactor
	p.NoiseScalingType = specbleach.ScalingType(c.NoiseScalingType)
	p.NoiseRescaleDB = c.NoiseRescaleDB
	p.PostFilterThresholdDB = c.PostFilterThresholdDB
	p.NoiseEstimationMethod = specbleach.EstimatorMethod(c.NoiseEstimationMethod)
	p.AdaptiveNoise = c.AdaptiveNoise
	p.TransientProtection = c.TransientProtection
	return p
}
