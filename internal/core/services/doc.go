// Package services holds litdb's use cases: ingestion of works and files,
// retrieval, saved filters, tags, indexed directories and settings.
// Each service is built from driven ports and exposes a driving port.
package services
