package configs

// Shopify holds configuration for the Admin GraphQL API client. The
// AccessToken is the app's admin token; the shop domain itself is carried
// per request, so one deployment serves one app installation token.
type Shopify struct {
	// APIVersion selects the Admin API version segment of the endpoint URL.
	APIVersion string `env:"API_VERSION" envDefault:"2024-10"`
	// AccessToken is sent as the X-Shopify-Access-Token header.
	AccessToken string `env:"ACCESS_TOKEN"`
}
