package model

// Package model defines domain data structures used across the app: fetch
// results, video metadata, playlist entities, and status enums. Structures
// carry explicit state transitions so the command surface can report them.
