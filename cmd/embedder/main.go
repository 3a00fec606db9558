// embedder serves guest tokens and dashboard metadata for embedding
// Apache Superset dashboards into a host application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"superset-embed/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts server.Options

	flagSet := pflag.NewFlagSet("embedder", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.ConfigPath, "config", "c", "", "path to the config file (default: ./config.yaml, ./configs/config.yaml)")
	flagSet.StringVar(&opts.LogLevel, "log-level", "", "override app.log_level (debug, info, warn, error)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(os.Stderr, "Usage: embedder [flags]\n\n")
		flagSet.PrintDefaults()
		return nil
	}

	return server.Run(context.Background(), opts)
}
