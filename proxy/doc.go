// Package proxy implements the storage proxy's HTTP surface on a gin engine.
//
// Each request performs at most one store operation and keeps no state
// between requests. Routes:
//
//	POST   /upload       multipart upload (bearer)
//	DELETE /delete       JSON {"key"} delete (bearer)
//	GET    /signed-url   retrieval URL for an existing key (bearer)
//	GET    /list         one page of keys under a prefix (bearer)
//	GET    /file/*key    public object download
//
// Anything else answers 404 {"error":"Not found"}. CORS and OPTIONS
// handling live in server/middleware and run before the engine.
package proxy
