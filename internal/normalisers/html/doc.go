// Package html extracts text from saved web pages. Pages exported from
// publisher sites usually carry Highwire citation_* meta tags; those fill
// the title, authors, year and DOI of the stored source.
package html
