// Package config resolves the reporter configuration from built-in defaults,
// environment variables and an optional config file, in that order of
// precedence, and validates the result. It also resolves the (HOSTNAME)
// placeholder of the StatsD namespace.
package config
