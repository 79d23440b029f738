// Package file is the ambient document loader: it turns a list of
// filesystem paths into the raw document strings configbuild.Parse
// expects.
//
// Unlike the teacher's single-file, hard-fail Fetcher this package
// generalizes from, a missing or unreadable path is silently skipped
// rather than failing the whole load — MissingFile is explicitly not an
// error for this system (spec §7). A directory path is skipped the same
// way. Callers that care which paths were actually loaded should stat
// them first; Load itself does not report which paths it dropped.
package file
