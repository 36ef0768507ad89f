package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kbukum/fileproxy/cmd/fileproxy/commands"
	"github.com/kbukum/fileproxy/cmd/fileproxy/flags"
	versionpkg "github.com/kbukum/fileproxy/version"
)

type Cli struct {
	flags.GlobalFlags

	Serve commands.ServeCmd `cmd:"" help:"Run the storage proxy"`

	Upload    commands.UploadCmd    `cmd:"" help:"Upload files"`
	Download  commands.DownloadCmd  `cmd:"" help:"Download a file"`
	List      commands.ListCmd      `cmd:"" help:"List stored files"`
	Delete    commands.DeleteCmd    `cmd:"" help:"Delete files"`
	SignedURL commands.SignedURLCmd `cmd:"" name:"signed-url" help:"Print the retrieval URL of a file"`

	Version commands.VersionCmd `cmd:"" help:"Print version information"`
}

func Execute() {
	cli := &Cli{}

	ctx := kong.Parse(cli,
		kong.Name("fileproxy"),
		kong.Description("An edge proxy in front of an object storage bucket."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)

	err := ctx.Run(&cli.GlobalFlags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// set via ldflags
var version = ""

func main() {
	if version != "" {
		versionpkg.Version = version
	}

	Execute()
}
