package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	imagecropper "github.com/menta2k/image-cropper"
	"github.com/menta2k/image-cropper/internal/config"
	"github.com/menta2k/image-cropper/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	jsonOutput bool

	cfg    *config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "image-cropper",
	Short: "Crop and export images at fixed target sizes",
	Long: `image-cropper - batch image cropping and export

Cover-fits many images to one target size, or edits and exports a single
image with rotation, flips and an explicit crop box.

Settings are read from ~/.config/image-cropper/config.toml (or the file
named by --config or IMAGE_CROPPER_CONFIG). A .env file in the working
directory is loaded first.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (toml, yaml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = imagecropper.GetVersion()
	rootCmd.SetVersionTemplate("image-cropper {{.Version}}\n")
}

// setup loads .env, the config file and the logger before any command runs
func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if logFormat != "" {
		loaded.Log.Format = logFormat
	}

	l, err := logging.New(loaded.Log.Level, loaded.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg = loaded
	logger = l
	return nil
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
