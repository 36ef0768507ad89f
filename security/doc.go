// Package security builds TLS configurations for the proxy listener and
// for clients that talk to a proxy behind a private CA.
//
//	server:
//	  tls:
//	    cert_file: /etc/fileproxy/tls.crt
//	    key_file:  /etc/fileproxy/tls.key
package security
