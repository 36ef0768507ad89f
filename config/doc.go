// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment.
//
// Environment variables need no prefix. Each variable is bound under every
// nesting its name allows, so STORAGE_S3_BUCKET reaches storage.s3_bucket,
// storage.s3.bucket and the flat storage_s3_bucket alike. Top-level
// variables such as ALLOWED_ORIGINS and AUTH_SECRET map to allowed_origins
// and auth_secret.
//
//	var cfg app.Config
//	err := config.LoadConfig("fileproxy", &cfg, config.WithConfigFile(path))
package config
