// Package paper defines the immutable paper record shared by the fetch,
// classification, and rendering stages.
package paper
