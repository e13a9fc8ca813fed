// Package plugins hosts plugin implementation subpackages. It intentionally
// contains no production runtime code itself; this file exists to satisfy
// tooling for the architectural guard test that lives alongside it.
//
// Plugin packages extend the annotation core with new spatial payload tags
// and validation rules. They depend only on pkg/interval and the service
// facade in internal/core; the storage and blob drivers under internal/infra
// are off limits to production plugin code so plugins stay portable across
// backends. Plugin tests may construct an in-memory store directly.
package plugins
