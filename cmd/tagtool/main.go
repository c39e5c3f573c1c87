// tagtool 标识与字节流调试工具
package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/beijian128/bytestream/config"
	"github.com/beijian128/bytestream/frame/log"
	"github.com/beijian128/bytestream/frame/logiclong"
	"github.com/beijian128/bytestream/frame/util"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, logrus.StandardLogger()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logrus.WithError(err).Error("tagtool failed")
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, logger *logrus.Logger) (err error) {
	defer util.RecoverError(&err)

	flags := flag.NewFlagSet("tagtool", flag.ContinueOnError)
	flags.SetOutput(out)
	var (
		help       = flags.BoolP("help", "h", false, "help")
		configFile = flags.StringP("config", "c", "", "config file (yaml)")
		level      = flags.StringP("level", "l", "", "log level, overrides config")
		maxHigh    = flags.Uint32("max-high", logiclong.MaxHigh, "upper bound of high")
		layout     = flags.String("layout", "", "comma separated field kinds for encode/decode")
		count      = flags.IntP("count", "n", 1, "number of random ids")
		seed       = flags.Uint64("seed", 0, "random seed, 0 uses the global source")
		trace      = flags.Bool("trace", false, "log every decoded field at trace level")
	)
	flags.Usage = func() {
		usage(out)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *help || flags.NArg() == 0 {
		flags.Usage()
		return flag.ErrHelp
	}

	cfg := &config.AppConfig{Codec: config.CodecConfig{MaxHigh: logiclong.MaxHigh}}
	if *configFile != "" {
		cfg, err = config.LoadConfig(*configFile)
		if err != nil {
			return err
		}
	}
	if cfg.Log != nil {
		closeLog, err := log.Init(logger, cfg.Log)
		if err != nil {
			return err
		}
		defer closeLog()
	}
	if *level != "" {
		lvl, err := logrus.ParseLevel(*level)
		if err != nil {
			return errors.Wrap(err, "level")
		}
		logger.SetLevel(lvl)
	}
	if *trace && !logger.IsLevelEnabled(logrus.TraceLevel) {
		logger.SetLevel(logrus.TraceLevel)
	}
	if flags.Changed("max-high") {
		cfg.Codec.MaxHigh = *maxHigh
	}
	if err := cfg.Codec.Check(cfg.Fixtures...); err != nil {
		return err
	}

	name := flags.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		usage(out)
		return errors.Errorf("unknown command %q", name)
	}

	t := &tool{
		out:    out,
		codec:  cfg.Codec,
		layout: *layout,
		count:  *count,
		seed:   *seed,
		trace:  *trace,
		log:    logger,
	}
	logger.WithFields(logrus.Fields{
		"command":  name,
		"max_high": t.codec.MaxHigh,
	}).Debug("Run command")
	return cmd.run(t, flags.Args()[1:])
}
