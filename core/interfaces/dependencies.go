// ABOUTME: Dependencies bundle shared by infrastructure adapters
// ABOUTME: The image resolver and the summarizer are built from it

package interfaces

// Dependencies groups the collaborators an adapter may need. Adapters
// document which fields they require; the rest may be nil.
type Dependencies struct {
	// Cache keeps resolved images and other short-lived values
	Cache Cache

	HTTPClient HTTPClient

	// Logger defaults to NopLogger in every adapter
	Logger Logger
}
