// Package client is a Go client for the proxy's HTTP API.
//
// Uploads stream the multipart body through an io.Pipe, so files of any
// size are sent without buffering, and are never retried. Downloads,
// signed URLs, deletes and listings retry on transport errors, 429 and 5xx
// per Config.Retry. Non-2xx answers come back as *APIError.
//
//	c, err := client.New(client.Config{BaseURL: "https://files.example.com", Secret: token})
//	res, err := c.Upload(ctx, client.UploadInput{FileName: "notes.txt", Body: f})
package client
