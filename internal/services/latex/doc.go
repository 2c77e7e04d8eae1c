// Package latex drives the external TeX engine that turns rendered reports
// into PDFs. Each attempt runs under its own timeout and is killed when the
// deadline passes; the retry budget comes from configuration. Auxiliary
// build files are removed after a successful compile.
package latex
