// Package security builds TLS configurations for both sides of the bridge:
// the host's outbound HTTP exchanges (custom roots, client certificates) and
// the IPC listener (server certificate, optional client verification).
//
//	out, err := (&security.TLSConfig{CAFile: "corp-ca.pem"}).Build()
//	in, err := (&security.TLSConfig{CertFile: "ipc.pem", KeyFile: "ipc.key"}).BuildServer()
package security
