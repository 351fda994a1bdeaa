// Package common holds sentinel errors and byte helpers shared by the
// wallet's storage and crypto layers. Match the errors with errors.Is.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// decoding of locally stored or remotely received blobs
	ErrorMalformed = errors.New("malformed data")
)
