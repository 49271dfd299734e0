// Package keyutil provides helpers to load and encode the key material
// used to sign and verify tokens: PEM encoded RSA and EC private keys,
// optionally protected with a passphrase, and RSA public keys.
package keyutil
