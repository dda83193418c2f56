// Package config loads the server, database, auth and events settings for
// taskdeck-api. Values come from defaults, an optional config.yaml, a .env
// file and TASKDECK_-prefixed environment variables, in increasing order of
// precedence, and are validated before the server starts.
package config
