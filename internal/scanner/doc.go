// Package scanner handles local filesystem scanning.
// It walks a directory tree and turns every uploadable file into an
// UploadTask, skipping placeholder files and excluded paths.
package scanner
