// Package config holds the style profile driving the vertical-writing
// conversion: the language tag written into the OPF, the font families
// assigned to body, heading and quote text, and the @font-face rules that
// map those families onto reader-local fonts.
package config

import (
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// FontFace describes a single @font-face rule referencing local fonts.
type FontFace struct {
	Family string   `yaml:"family"`
	Weight string   `yaml:"weight,omitempty"`
	Local  []string `yaml:"local"`
}

// Fonts names the families assigned per element group.
type Fonts struct {
	Body    string `yaml:"body"`
	Heading string `yaml:"heading"`
	Quote   string `yaml:"quote"`
}

// Config is the style profile. Zero value is not usable; start from
// Default() or Load().
type Config struct {
	Language  string     `yaml:"language"`
	Fonts     Fonts      `yaml:"fonts"`
	FontFaces []FontFace `yaml:"font_faces"`
}

// Default returns the built-in profile: Traditional Chinese, vertical
// writing with the ST family fonts available on most readers.
func Default() *Config {
	return &Config{
		Language: "zh-TW",
		Fonts: Fonts{
			Body:    "宋體繁",
			Heading: "黑體繁",
			Quote:   "楷體繁",
		},
		FontFaces: []FontFace{
			{Family: "宋體繁", Local: []string{"STSongTC-Light", "STSongTC"}},
			{Family: "宋體繁", Weight: "bold", Local: []string{"STSongTC-Bold"}},
			{Family: "黑體繁", Local: []string{"STHeitiTC-Light", "STHeitiTC"}},
			{Family: "黑體繁", Weight: "bold", Local: []string{"STHeitiTC-Medium"}},
			{Family: "楷體繁", Local: []string{"STKaitiTC", "STKaitiTC-Regular"}},
			{Family: "楷體繁", Weight: "bold", Local: []string{"STKaitiTC-Bold"}},
			{Family: "圓體繁", Local: []string{"STYuanTC-Light", "STYuanTC"}},
			{Family: "圓體繁", Weight: "bold", Local: []string{"STYuanTC-Bold"}},
			{Family: "宋體", Local: []string{"STSong", "STSong-Regular"}},
			{Family: "黑體", Local: []string{"STHeiti", "STHeiti-Regular"}},
			{Family: "楷體", Local: []string{"STKai", "STKai-Regular"}},
			{Family: "圓體", Local: []string{"STYuan", "STYuan-Regular"}},
			{Family: "TBMincho", Local: []string{"TBMincho-Regular"}},
			{Family: "TBGothic", Local: []string{"TBGothic-Regular"}},
			{Family: "TsukushiMincho", Local: []string{"TsukushiMincho-Regular"}},
		},
	}
}

// Load overlays a YAML profile from path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports profile values the conversion cannot work with.
func (c *Config) Validate() error {
	if c.Language == "" {
		return errors.New("language must not be empty")
	}
	if c.Fonts.Body == "" {
		return errors.New("fonts.body must not be empty")
	}
	for i, ff := range c.FontFaces {
		if ff.Family == "" {
			return fmt.Errorf("font_faces[%d]: family must not be empty", i)
		}
		if len(ff.Local) == 0 {
			return fmt.Errorf("font_faces[%d] (%s): at least one local font name required", i, ff.Family)
		}
	}
	return nil
}
