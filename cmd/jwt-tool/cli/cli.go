package cli

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xjwt/jwt"
	"github.com/effective-security/xjwt/x/ctl"
	"github.com/effective-security/xlog"
	"github.com/joho/godotenv"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xjwt", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Version ctl.VersionFlag `name:"version" help:"Print version information and quit" hidden:""`

	Cfg       string `help:"Configuration file with JWT settings, YAML or JSON"`
	EnvPrefix string `help:"Prefix of environment variables with JWT settings, used when --cfg is not provided" default:"JWT_"`
	EnvFile   string `help:"Optional .env file to load before reading the environment variables"`
	Debug     bool   `help:"Enable debug logging"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	codec     *jwt.Codec
	codecOpts []jwt.Option
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// WithCodecOptions allows to specify options applied to the loaded codec,
// for example a custom clock
func (c *Cli) WithCodecOptions(opts ...jwt.Option) *Cli {
	c.codecOpts = opts
	return c
}

// AfterApply hook sets the log level
func (c *Cli) AfterApply(_ *kong.Kong, _ kong.Vars) error {
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.ERROR)
	}
	return nil
}

// Codec returns the codec created from --cfg file,
// or from the environment variables
func (c *Cli) Codec() (*jwt.Codec, error) {
	if c.codec != nil {
		return c.codec, nil
	}

	var (
		cfg *jwt.Config
		err error
	)
	if c.Cfg != "" {
		cfg, err = jwt.LoadConfig(c.Cfg)
	} else {
		if c.EnvFile != "" {
			// variables already set in the environment take precedence
			if err = godotenv.Load(c.EnvFile); err != nil {
				return nil, errors.WithMessage(err, "unable to load env file")
			}
		}
		cfg, err = jwt.ConfigFromEnv(c.EnvPrefix)
	}
	if err != nil {
		return nil, errors.WithMessage(err, "unable to load configuration")
	}

	c.codec, err = jwt.NewFromConfig(cfg, c.codecOpts...)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to create codec")
	}
	logger.KV(xlog.DEBUG, "alg", c.codec.Algorithm(), "max_age", c.codec.MaxAge())
	return c.codec, nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value any) error {
	return ctl.WriteJSON(c.Writer(), value)
}

// ReadInput returns the value, or reads it from stdin if the value is "-"
func (c *Cli) ReadInput(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty input")
	}
	if value == "-" {
		return io.ReadAll(c.Reader())
	}
	return []byte(value), nil
}
