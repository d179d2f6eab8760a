package parser

// Config holds the markup literals the record extractor keys on. They are tied
// to one site's markup and have to be changed together when retargeting.
type Config struct {
	// BaseURL is prepended to download hrefs and copied into Record.EngineURL.
	BaseURL string
	// ContainerClass is the class of the tbody that holds the listing rows.
	ContainerClass string
	// ExpandChildClass marks the detail row of a two-row listing.
	ExpandChildClass string
	// DownloadClass is the class of the download anchor inside a primary row.
	DownloadClass string
	// AdsIcon is the img src that flags a sponsored listing.
	AdsIcon string
	// AdsLabel is the annotation appended to Record.Extra for sponsored listings.
	AdsLabel string
}

// DefaultConfig returns the literals used by top.lafa.site.
func DefaultConfig() Config {
	return Config{
		BaseURL:          "https://top.lafa.site",
		ContainerClass:   "tbody_class",
		ExpandChildClass: "expand-child",
		DownloadClass:    "dlink_t no-pop",
		AdsIcon:          "/pic/rk.svg",
		AdsLabel:         "ADS",
	}
}

// WithBaseURL returns a copy of c using baseURL.
func (c Config) WithBaseURL(baseURL string) Config {
	c.BaseURL = baseURL
	return c
}
