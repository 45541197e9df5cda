// Package contracts holds the contract build artifacts shipped with the binary.
package contracts

import _ "embed"

//go:embed DigitalObjectIdentifier.json
var digitalObjectIdentifier []byte

// Bundled returns the Truffle artifact of DigitalObjectIdentifier.
func Bundled() []byte {
	return digitalObjectIdentifier
}
