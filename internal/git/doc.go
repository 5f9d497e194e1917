// Package git reads version control metadata of diagram roots so build
// reports can name the commit their artifacts were rendered from.
package git
