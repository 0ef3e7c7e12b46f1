// Package git checks whether vault files are exposed to a git repository.
//
// Vault files are encrypted, but committing them publishes the ciphertext
// to an offline password-guessing attack. Checks performed:
//   - Whether the vault directory is inside a git work tree
//   - Whether vault files are tracked by git (should not be)
//   - Whether vault files are in .gitignore (should be)
package git
