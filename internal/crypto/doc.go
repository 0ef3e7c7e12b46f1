// Package crypto provides cryptographic operations for passvault.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the vault password
//   - 12-byte random nonce generated for every encryption
//   - Authenticated encryption: a wrong key and tampered data fail identically
//
// Key derivation uses Argon2id with:
//   - 16-byte random salt, generated once per vault (stored unencrypted)
//   - time=2, memory=19 MiB, threads=1, frozen so existing vaults stay readable
//
// Memory safety:
//   - Keys live in a Secret, which is zeroed on Destroy
//   - Use ClearBytes() to zero other sensitive data after use
package crypto
