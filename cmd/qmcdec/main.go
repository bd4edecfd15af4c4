// Command qmcdec decrypts QMC/QMC2 (QQMusic) audio containers back to
// their native FLAC/MP3/OGG form, grounded on an earlier cmd/um/main.go entrypoint
// CLI shape, trimmed to QMC/QMC2 single-file and directory decrypt.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.qmcdec.dev/cli/internal/decoder"
)

var appVersion = "custom"

func main() {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
		appVersion = info.Main.Version
	}

	app := &cli.App{
		Name:      "qmcdec",
		Usage:     "Decrypt QMC/QMC2 (QQMusic) audio containers",
		Version:   appVersion,
		UsageText: "qmcdec [--verbose] [--watch] [--overwrite] <input> <output> [ekey]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "path to input file or directory"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "path to output file or directory"},
			&cli.StringFlag{Name: "ekey", Usage: "EKey string, required for mflac0/mgg1 inputs"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "verbose logging"},
			&cli.BoolFlag{Name: "watch", Usage: "watch the input directory and process new files as they appear"},
			&cli.BoolFlag{Name: "overwrite", Usage: "overwrite existing output files instead of skipping them"},
			&cli.BoolFlag{Name: "list-extensions", Usage: "print recognized input extensions and exit"},
		},
		Action: appMain,
	}

	if err := app.Run(os.Args); err != nil {
		setupLogger(false).Fatal("qmcdec failed", zap.Error(err))
	}
}

// setupLogger follows cmd/um/main.go's setupLogger: a console
// encoder with capitalized colored levels and RFC3339 timestamps, gated
// by verbose on InfoLevel vs DebugLevel.
func setupLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder

	enabler := zap.LevelEnablerFunc(func(level zapcore.Level) bool {
		if verbose {
			return true
		}
		return level >= zapcore.InfoLevel
	})

	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), os.Stderr, enabler))
}

func appMain(c *cli.Context) error {
	logger := setupLogger(c.Bool("verbose"))

	if c.Bool("list-extensions") {
		for _, ext := range decoder.SupportedExtensions() {
			fmt.Println(ext)
		}
		return nil
	}

	input := c.String("input")
	output := c.String("output")
	ekey := c.String("ekey")

	args := c.Args()
	if input == "" && args.Len() > 0 {
		input = args.Get(0)
	}
	if output == "" && args.Len() > 1 {
		output = args.Get(1)
	}
	if ekey == "" && args.Len() > 2 {
		ekey = args.Get(2)
	}

	if input == "" || output == "" {
		return fmt.Errorf("usage: %s", c.App.UsageText)
	}

	proc := &processor{
		logger:    logger,
		ekey:      ekey,
		overwrite: c.Bool("overwrite"),
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	if info.IsDir() {
		if c.Bool("watch") {
			return watchDir(proc, input, output)
		}
		return proc.processDir(input, output)
	}
	return proc.processFile(input, output)
}
