package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"epubvert/internal/config"
	"epubvert/internal/converter"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epubvert <input.epub>",
		Short: "Rewrite an EPUB for Traditional Chinese vertical writing",
		Long: `epubvert rewrites an EPUB package so Traditional Chinese text renders
vertically, right to left, on readers that honor embedded styling.

It strips font-family overrides from stylesheets and inline styles,
injects vertical writing-mode rules and @font-face declarations for
reader-local Traditional Chinese fonts, and marks the package metadata
and spine for right-to-left page progression. Running it on its own
output is a no-op.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			defer opts.Logger.Sync()

			opts.Logger.Info("Converting",
				zap.String("input", opts.InputPath),
				zap.String("output", opts.OutputPath))

			p := converter.NewPipeline(converter.ConvertOptions{
				InputPath:  opts.InputPath,
				OutputPath: opts.OutputPath,
				Profile:    opts.Profile,
				Logger:     opts.Logger,
			})
			if err := p.Convert(); err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: input with _vertical suffix)")
	cmd.Flags().StringP("config", "c", "", "Style profile YAML path (default: built-in Traditional Chinese profile)")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().BoolP("verbose", "v", false, "Shorthand for --log-level debug")
	return cmd
}

// cliOptions is the decoded and validated command line.
type cliOptions struct {
	InputPath  string
	OutputPath string
	Profile    *config.Config
	Logger     *zap.Logger
}

// readCLIOptions decodes flags and arguments into cliOptions, validating
// everything that can be checked without touching the input archive.
func readCLIOptions(cmd *cobra.Command, args []string) (*cliOptions, error) {
	inputPath := args[0]
	if !strings.EqualFold(filepath.Ext(inputPath), ".epub") {
		return nil, fmt.Errorf("input file is not an EPUB: %s", inputPath)
	}
	if _, err := os.Stat(inputPath); err != nil {
		return nil, fmt.Errorf("input file not found: %s", inputPath)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath)
	}
	if samePath(inputPath, outputPath) {
		return nil, fmt.Errorf("output path must differ from input path: %s", outputPath)
	}

	profile := config.Default()
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		var err error
		if profile, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}

	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: must be debug, info, warn or error", levelName)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zapcore.DebugLevel
	}

	return &cliOptions{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Profile:    profile,
		Logger:     buildLogger(level),
	}, nil
}

// defaultOutputPath inserts _vertical before the extension.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_vertical" + ext
}

// samePath reports whether two paths resolve to the same file.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

// buildLogger returns a console logger writing to stderr.
func buildLogger(level zapcore.Level) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
