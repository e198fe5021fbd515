// Package provider implements batch translation backends for the gateway.
package provider

import "github.com/ZaguanLabs/wordcache"

// BatchProvider is the interface for batch translation backends.
// This is an alias to the main package interface for convenience.
type BatchProvider = wordcache.BatchProvider
