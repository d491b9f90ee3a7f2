package features

// FeatureNames fixes the order of the feature vector. This ordering is the
// binding contract with the offline training pipeline: a serialized model
// artifact is only accepted when its embedded feature list matches this one
// exactly. Append-only; never reorder.
var FeatureNames = []string{
	"url_length",
	"num_dots",
	"num_hyphens",
	"num_digits",
	"num_special_chars",
	"has_ip",
	"has_at_symbol",
	"is_https",
	"subdomain_count",
	"path_length",
	"query_length",
	"has_punycode",
	"has_shortener",
	"keyword_hits",
	"percent_encoding_density",
	"brand_similarity",
}

// FeatureSet holds one extracted feature vector. Built once per request and
// read-only afterward; both probability providers consume it.
type FeatureSet struct {
	URLLength              float64
	NumDots                float64
	NumHyphens             float64
	NumDigits              float64
	NumSpecialChars        float64
	HasIP                  float64
	HasAtSymbol            float64
	IsHTTPS                float64
	SubdomainCount         float64
	PathLength             float64
	QueryLength            float64
	HasPunycode            float64
	HasShortener           float64
	KeywordHits            float64
	PercentEncodingDensity float64
	BrandSimilarity        float64
}

// Vector returns the features in FeatureNames order.
func (fs FeatureSet) Vector() []float64 {
	return []float64{
		fs.URLLength,
		fs.NumDots,
		fs.NumHyphens,
		fs.NumDigits,
		fs.NumSpecialChars,
		fs.HasIP,
		fs.HasAtSymbol,
		fs.IsHTTPS,
		fs.SubdomainCount,
		fs.PathLength,
		fs.QueryLength,
		fs.HasPunycode,
		fs.HasShortener,
		fs.KeywordHits,
		fs.PercentEncodingDensity,
		fs.BrandSimilarity,
	}
}
