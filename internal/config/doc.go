// Package config provides configuration loading, merging, and validation
// facilities for the konvo client and the development server.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources win for non-zero fields):
//  1. Environment variables, optionally loaded from a .env file
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry points are [GetClientConfig] for the client runtime and
// [GetDevServerConfig] for cmd/devserver.
package config
