package commands

import (
	"encoding/json"
	"os"

	"sigs.k8s.io/yaml"
)

func printStructured(format string, v any) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case "yaml":
		b, err = yaml.Marshal(v)
	default:
		b, err = json.MarshalIndent(v, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(b)
	return err
}
