package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/geodna/internal/config"
	"github.com/woozymasta/geodna/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Format     string `short:"f" long:"format" env:"OUTPUT_FORMAT" description:"Output format" choice:"text" choice:"json" choice:"yaml" default:"text"`
}

var (
	opts   Options
	stdout io.Writer = os.Stdout
)

func main() {
	_ = godotenv.Load()

	parser := newParser()
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		opts.Logger.Setup()
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}

	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{"encode", "Encode a coordinate", "Encode a latitude and longitude into a code.", &EncodeCommand{}},
		{"decode", "Decode codes", "Print the centre of every code.", &DecodeCommand{}},
		{"bbox", "Bounding boxes", "Print the latitude and longitude intervals of every code.", &BBoxCommand{}},
		{"neighbours", "Adjacent codes", "Print the eight codes surrounding every code.", &NeighboursCommand{}},
		{"info", "Describe codes", "Print the box, error, size, area and geohash of every code.", &InfoCommand{}},
		{"geojson", "Export GeoJSON", "Export code outlines or encoded points as a GeoJSON feature collection.", &GeoJSONCommand{}},
		{"tiles", "Render overlay tiles", "Pre-render grid overlay tiles into the tile cache.", &TilesCommand{}},
	}
	for _, c := range commands {
		if _, err := parser.AddCommand(c.name, c.short, c.long, c.data); err != nil {
			panic(err)
		}
	}

	return parser
}

// loadConfig reads the configuration file, falling back to defaults when absent.
func loadConfig() (*config.Config, error) {
	cfg, found, err := config.LoadOrDefault(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Debug().Str("path", opts.ConfigFile).Msg("Configuration file not found, using defaults")
	}
	return cfg, nil
}

// render writes v in the selected output format; text uses the supplied printer.
func render(v interface{}, text func(w io.Writer) error) error {
	switch opts.Format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return text(stdout)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}
