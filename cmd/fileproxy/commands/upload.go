package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/fileproxy/api"
	"github.com/kbukum/fileproxy/client"
	"github.com/kbukum/fileproxy/cmd/fileproxy/flags"
	"github.com/kbukum/fileproxy/logger"
)

type UploadCmd struct {
	Files []string `arg:"" help:"Files to upload" type:"existingfile"`

	Path        string `help:"Explicit key; only valid with a single file"`
	ContentType string `help:"Content type (default: detected from the file contents)"`
	Concurrency int    `help:"Parallel uploads" default:"4"`
	Output      string `help:"Output format" enum:"text,json,yaml" default:"text" short:"o"`
}

func (cmd *UploadCmd) Run(g *flags.GlobalFlags) error {
	if cmd.Path != "" && len(cmd.Files) > 1 {
		return fmt.Errorf("--path can only be used with a single file")
	}
	c, err := g.Client()
	if err != nil {
		return err
	}
	log := g.Logger()

	results := make([]*api.UploadResponse, len(cmd.Files))
	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(max(cmd.Concurrency, 1))
	for i, path := range cmd.Files {
		eg.Go(func() error {
			res, err := cmd.uploadOne(ctx, c, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			log.Debug("uploaded", logger.Fields("file", path, logger.FieldKey, res.Key))
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if cmd.Output != "text" {
		return printStructured(cmd.Output, results)
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\n", r.Key, humanize.Bytes(uint64(r.Size)), r.URL)
	}
	return nil
}

func (cmd *UploadCmd) uploadOne(ctx context.Context, c *client.Client, path string) (*api.UploadResponse, error) {
	contentType := cmd.ContentType
	if contentType == "" {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, err
		}
		contentType = mt.String()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.Upload(ctx, client.UploadInput{
		Path:        cmd.Path,
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Body:        f,
	})
}
