package configs

// HTTP configures the server carrying the campaign API and the webhook
// routes. Only the port is configurable; the service always binds all
// interfaces.
type HTTP struct {
	// Port is the TCP port the HTTP server will listen on. Defaults to 8080.
	Port uint16 `env:"PORT" envDefault:"8080"`
}
