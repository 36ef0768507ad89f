package flags

import (
	"time"

	"github.com/kbukum/fileproxy/client"
	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/resilience"
	"github.com/kbukum/fileproxy/security"
)

type GlobalFlags struct {
	Debug bool `help:"Enable debug logging"`

	URL     string        `name:"url" help:"Proxy base URL" env:"FILEPROXY_URL" default:"http://localhost:8080"`
	Secret  string        `help:"Bearer secret for protected routes" env:"FILEPROXY_SECRET"`
	Timeout time.Duration `help:"Per-request timeout" default:"5m"`
	Retries int           `help:"Attempts for idempotent requests" default:"3"`

	CAFile   string `name:"ca-file" help:"PEM bundle used to verify the proxy certificate" env:"FILEPROXY_CA_FILE" type:"existingfile"`
	Insecure bool   `help:"Skip TLS certificate verification"`
}

// Client builds an API client from the connection flags.
func (f *GlobalFlags) Client() (*client.Client, error) {
	return client.New(client.Config{
		BaseURL: f.URL,
		Secret:  f.Secret,
		Timeout: f.Timeout,
		Retry:   resilience.RetryConfig{MaxAttempts: f.Retries},
		TLS: security.TLSConfig{
			CAFile:     f.CAFile,
			SkipVerify: f.Insecure,
		},
	})
}

// Logger returns a console logger on stderr, leaving stdout for command output.
func (f *GlobalFlags) Logger() *logger.Logger {
	cfg := &logger.Config{Format: "console", Output: "stderr"}
	if f.Debug {
		cfg.Level = "debug"
	}
	cfg.ApplyDefaults()
	return logger.New(cfg, "fileproxy")
}
