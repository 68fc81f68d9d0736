// Command server runs the config-fs HTTP server: a virtual filesystem over
// an in-memory object graph, loaded from a YAML definition or a JSON
// snapshot and exposed under /fs, /services and /ws.
package main
