package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/dustin/go-humanize"

	"github.com/kbukum/fileproxy/cmd/fileproxy/flags"
	"github.com/kbukum/fileproxy/logger"
)

type DownloadCmd struct {
	Key    string `arg:"" help:"Object key"`
	Output string `help:"Destination file, - for stdout (default: last key segment)" short:"o"`
}

func (cmd *DownloadCmd) Run(g *flags.GlobalFlags) error {
	ctx := context.Background()

	c, err := g.Client()
	if err != nil {
		return err
	}

	f, err := c.Download(ctx, cmd.Key)
	if err != nil {
		return err
	}
	defer f.Body.Close()

	if cmd.Output == "-" {
		_, err = io.Copy(os.Stdout, f.Body)
		return err
	}

	dest := cmd.Output
	if dest == "" {
		dest = path.Base(cmd.Key)
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, f.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("download %s: %w", cmd.Key, err)
	}

	g.Logger().Info("downloaded", logger.Fields(logger.FieldKey, cmd.Key, "file", dest, "size", humanize.Bytes(uint64(n))))
	return nil
}
