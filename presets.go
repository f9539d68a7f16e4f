package edgetrust

// PresetCloudflare configures the Cloudflare defaults explicitly: the
// CF_CONNECTING_IP header and both published edge range lists.
func PresetCloudflare() Option {
	return func(c *config) error {
		return applyOptions(c,
			WithHeaderName(DefaultHeaderName),
			WithIPv4ListURL(DefaultIPv4ListURL),
			WithIPv6ListURL(DefaultIPv6ListURL),
			UseIPv4List(true),
			UseIPv6List(true),
		)
	}
}

// PresetStaticRanges trusts a fixed set of ranges and disables both remote
// lists, so nothing is fetched.
//
// It suits deployments without outbound network access, where the edge
// ranges are pinned in configuration.
func PresetStaticRanges(ranges ...NetworkRange) Option {
	return func(c *config) error {
		return applyOptions(c,
			UseIPv4List(false),
			UseIPv6List(false),
			WithAdditionalRanges(ranges...),
		)
	}
}
