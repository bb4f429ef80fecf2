package command

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/refstore/internal/cli/output"
	"github.com/yndnr/refstore/internal/config"
	"github.com/yndnr/refstore/internal/core/service"
	"github.com/yndnr/refstore/internal/infra/buildinfo"
	"github.com/yndnr/refstore/internal/infra/confloader"
	"github.com/yndnr/refstore/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "refstore",
		Usage:   "Inspect and modify a reference-counted blob store",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SaveCommand(),
			IncRefCommand(),
			DecRefCommand(),
			ListCommand(),
			StatsCommand(),
			GCCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"REFSTORE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "engine",
			Aliases: []string{"e"},
			Usage:   "Storage engine: badger, bbolt",
		},
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "Database location (directory for badger, file for bbolt)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:  "raw-key",
			Usage: "Treat keys as literal strings instead of hex",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config string
	Engine string
	Path   string

	Output string // table, json, yaml
	Wide   bool
	RawKey bool

	LogLevel string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:   c.String("config"),
		Engine:   c.String("engine"),
		Path:     c.String("path"),
		Output:   c.String("output"),
		Wide:     c.Bool("wide"),
		RawKey:   c.Bool("raw-key"),
		LogLevel: c.String("log-level"),
	}
}

// overrides maps explicitly set flags onto config keys.
func (f *GlobalFlags) overrides() map[string]any {
	values := make(map[string]any)
	if f.Engine != "" {
		values["storage.engine"] = f.Engine
	}
	if f.Path != "" {
		values["storage.path"] = f.Path
	}
	if f.LogLevel != "" {
		values["log.level"] = f.LogLevel
	}
	return values
}

// LoadConfig resolves the configuration from defaults, the config file,
// REFSTORE_ environment variables and flags, in increasing priority.
func LoadConfig(c *cli.Context) (*config.Config, error) {
	flags := ParseGlobalFlags(c)

	cfg := config.Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(flags.Config),
		confloader.WithOverrides(flags.overrides()),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore loads the configuration, opens the store and passes it to
// fn. The store is closed when fn returns.
func openStore(c *cli.Context, fn func(s *service.RefStore) error) (err error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return err
	}

	store, err := service.Open(cfg.KVConfig(), cfg.StoreOptions(log)...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	return fn(store)
}

// parseKey decodes a key argument: hex by default, literal with --raw-key.
func parseKey(c *cli.Context, arg string) ([]byte, error) {
	if arg == "" {
		return nil, errors.New("key argument is required")
	}
	if c.Bool("raw-key") {
		return []byte(arg), nil
	}

	key, err := hex.DecodeString(arg)
	if err != nil {
		return nil, fmt.Errorf("key %q is not hex (use --raw-key for literal keys): %w", arg, err)
	}
	return key, nil
}

// displayKey renders a key the way parseKey accepts it.
func displayKey(c *cli.Context, key []byte) string {
	if c.Bool("raw-key") {
		return string(key)
	}
	return hex.EncodeToString(key)
}

// render writes data to the app writer in the selected format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, flags.Wide).Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func reader(c *cli.Context) io.Reader {
	if c.App.Reader != nil {
		return c.App.Reader
	}
	return os.Stdin
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
