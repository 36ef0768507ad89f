// Package storage defines the object store behind the proxy: a flat bucket
// of keys mapping to bytes, a content type, string metadata, a size, an
// upload time and a store-assigned ETag.
//
// # Backends
//
//   - storage/s3: Cloudflare R2, Amazon S3 or any S3-compatible endpoint
//   - storage/supabase: Supabase Storage over its REST API
//   - storage/local: a directory on disk
//   - storage/memory: an in-process map for tests and local development
//
// Backends register themselves from init(); import them for side effects
// and select one by name:
//
//	storage:
//	  provider: "s3"
//	  s3:
//	    bucket: "media"
//	    endpoint: "https://<account>.r2.cloudflarestorage.com"
//	    region: "auto"
package storage
