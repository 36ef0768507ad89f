package commands

import (
	"context"

	"github.com/kbukum/fileproxy/cmd/fileproxy/flags"
	"github.com/kbukum/fileproxy/logger"
)

type DeleteCmd struct {
	Keys []string `arg:"" help:"Object keys"`
}

func (cmd *DeleteCmd) Run(g *flags.GlobalFlags) error {
	ctx := context.Background()

	c, err := g.Client()
	if err != nil {
		return err
	}
	log := g.Logger()

	for _, key := range cmd.Keys {
		if err := c.Delete(ctx, key); err != nil {
			return err
		}
		log.Info("file deleted", logger.Fields(logger.FieldKey, key))
	}
	return nil
}
