package edgetrust

const (
	loadResultSuccess    = "success"
	loadResultFetchError = "fetch_error"
	loadResultParseError = "parse_error"
	loadResultCancelled  = "cancelled"
)
