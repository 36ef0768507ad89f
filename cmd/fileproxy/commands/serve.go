package commands

import (
	"context"

	"github.com/kbukum/fileproxy/app"
	"github.com/kbukum/fileproxy/cmd/fileproxy/flags"
	"github.com/kbukum/fileproxy/config"
)

type ServeCmd struct {
	Config  string `help:"Config file (default: first of cmd/fileproxy/config.yml, config/config.yml, config.yml)" type:"existingfile"`
	EnvFile string `help:"Env file loaded before the environment is read" type:"existingfile"`
}

func (cmd *ServeCmd) Run(g *flags.GlobalFlags) error {
	var cfg app.Config
	err := config.LoadConfig(app.ServiceName, &cfg,
		config.WithConfigFile(cmd.Config),
		config.WithEnvFile(cmd.EnvFile),
	)
	if err != nil {
		return err
	}
	if g.Debug {
		cfg.Debug = true
		cfg.Logging.Level = "debug"
	}

	a, err := app.New(&cfg)
	if err != nil {
		return err
	}
	return a.Run(context.Background())
}
