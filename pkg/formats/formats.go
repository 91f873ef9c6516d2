// Package formats provides parsers and writers for walk mesh asset files.
package formats

// Note: the .w walk mesh chunk format is implemented in walkmesh.go
