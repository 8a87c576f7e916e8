// Package config provides configuration loading, merging, and validation
// facilities for the flock-keeper client and its system-of-record server.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. JSON config file
//  3. Environment variables
//  4. Command-line flags
//
// The main entry points are [GetClientConfig] and [GetServerConfig], which
// return role-specific validated views of [StructuredConfig].
package config
