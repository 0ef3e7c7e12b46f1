// Package storage persists vault envelopes and keeps the vault catalog.
//
// FileStore holds one opaque envelope per vault in <dir>/<name>.vault.
// Save follows a backup-verify-write-restore sequence:
//  1. copy the existing file to <name>.bkp
//  2. compare BLAKE3 digests of original and backup, abort on mismatch
//  3. write the new bytes and fsync
//  4. on write or sync failure, copy the backup back over the file
//
// A Save either leaves the new content durable or the file exactly as it
// was. The .bkp file only outlives a Save that failed to restore.
//
// Catalog is a BBolt database (<dir>/.catalog.db) with one bucket:
//   - vaults: per-vault ID, timestamps, envelope size and BLAKE3 digest
//
// The catalog is unencrypted and holds no secrets, so status and keyring
// commands can run without a password. It is updated after each
// successful Save; losing it never affects vault data.
package storage
