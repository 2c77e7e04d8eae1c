// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// It provides the structured error markers plus the Wrap helper that keep
// failure classification (fatal configuration problems vs recoverable fetch
// and compile errors) uniform across the fetcher, compiler, and collector.
package services
