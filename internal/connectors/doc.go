// Package connectors holds the sources litdb reads from: the OpenAlex
// metadata client and the local filesystem connector used for indexed
// directories.
package connectors
