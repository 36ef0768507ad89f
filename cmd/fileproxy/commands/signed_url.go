package commands

import (
	"context"
	"fmt"

	"github.com/kbukum/fileproxy/cmd/fileproxy/flags"
)

type SignedURLCmd struct {
	Key string `arg:"" help:"Object key"`
}

func (cmd *SignedURLCmd) Run(g *flags.GlobalFlags) error {
	c, err := g.Client()
	if err != nil {
		return err
	}

	u, err := c.SignedURL(context.Background(), cmd.Key)
	if err != nil {
		return err
	}
	fmt.Println(u)
	return nil
}
