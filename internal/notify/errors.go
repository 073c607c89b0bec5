package notify

import (
	"errors"
	"net/textproto"
)

var (
	// ErrAuthentication is returned when the server rejects the credentials
	ErrAuthentication = errors.New("smtp authentication failed")
	// ErrTransport is returned on connection, TLS or protocol-level failures
	ErrTransport = errors.New("smtp transport failed")
	// ErrSubmission is returned when the server rejects the envelope or content
	ErrSubmission = errors.New("smtp submission rejected")
)

// classifyAuth maps an AUTH failure to the error taxonomy. A reply code from
// the server is a credential rejection; anything else happened below SMTP.
func classifyAuth(err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return ErrAuthentication
	}
	// I/O errors, or net/smtp refusing PLAIN over an unencrypted connection
	return ErrTransport
}
