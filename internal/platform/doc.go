package platform

// Package platform contains OS integration and external tooling glue:
// filesystem helpers, the Downloads directory lookup, path expansion, and
// playlist expansion via the ytdlp library.
