// Package security validates vault names and confines vault file access
// to the vault directory.
//
// Names are restricted to a single portable path element; every file
// operation goes through os.Root, so symlinks and ".." cannot redirect a
// read or write outside the directory.
package security
