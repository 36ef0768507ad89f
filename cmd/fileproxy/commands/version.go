package commands

import (
	"fmt"

	"github.com/kbukum/fileproxy/cmd/fileproxy/flags"
	"github.com/kbukum/fileproxy/version"
)

type VersionCmd struct{}

func (cmd *VersionCmd) Run(g *flags.GlobalFlags) error {
	fmt.Println(version.GetVersionInfo().String())
	return nil
}
