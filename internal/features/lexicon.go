package features

// Lexicon carries the word lists the extractor matches against. Loaded once
// at startup (from the dataset store, or the built-in defaults) and shared
// read-only across requests.
type Lexicon struct {
	Keywords   []string
	Brands     []string
	Shorteners []string
}

var defaultKeywords = []string{
	"account",
	"bank",
	"bonus",
	"claim",
	"confirm",
	"free",
	"gift",
	"invoice",
	"kyc",
	"login",
	"otp",
	"password",
	"payment",
	"reset",
	"secure",
	"signin",
	"update",
	"urgent",
	"verify",
	"wallet",
}

var defaultShorteners = []string{
	"bit.ly",
	"cutt.ly",
	"is.gd",
	"ow.ly",
	"rb.gy",
	"rebrand.ly",
	"shorturl.at",
	"soo.gd",
	"t.co",
	"tinyurl.com",
}

var defaultBrands = []string{
	"adobe.com",
	"amazon.com",
	"apple.com",
	"bankofamerica.com",
	"binance.com",
	"chase.com",
	"coinbase.com",
	"dropbox.com",
	"facebook.com",
	"github.com",
	"google.com",
	"instagram.com",
	"linkedin.com",
	"microsoft.com",
	"netflix.com",
	"paypal.com",
	"steamcommunity.com",
	"twitter.com",
	"wellsfargo.com",
	"whatsapp.com",
}

// DefaultLexicon returns the built-in word lists. The dataset store seeds
// its tables from these on first run.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Keywords:   append([]string(nil), defaultKeywords...),
		Brands:     append([]string(nil), defaultBrands...),
		Shorteners: append([]string(nil), defaultShorteners...),
	}
}
