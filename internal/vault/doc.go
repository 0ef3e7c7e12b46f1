// Package vault implements the vault engine: the locked/unlocked state
// machine, the in-memory entry collection, and its encoding to the
// encrypted on-disk envelope.
//
// Engine operations:
//   - CreateVault: new salt, derived key, empty collection (not yet on disk)
//   - Unlock: load envelope, derive key from its salt, decrypt and decode
//   - Add / Get / Delete / ListEntries: entry operations on an unlocked vault
//   - Commit: encode, encrypt with a fresh nonce, save through the Store
//   - Lock: wipe entries and key
//   - ListVaults: names available in the Store, only while locked
//
// The engine is not safe for concurrent use. Each call runs to completion,
// including its disk I/O, before it returns.
package vault
