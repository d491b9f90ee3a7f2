package scoring

// Category identifies the kind of signal a contribution came from. The enum
// order is the tie-break priority when two signals contribute the same
// number of points: ML first, then CV, lexical hits, SSL, domain age.
type Category int

const (
	CategoryML Category = iota
	CategoryCV
	CategoryLexical
	CategorySSL
	CategoryDomainAge
)

// Signal is one scored factor fed into fusion. Unknown signals carry a
// reduced uncertainty penalty instead of the confirmed-bad weight and are
// still reported in reasons.
type Signal struct {
	Name     string
	Category Category
	Points   float64
	Unknown  bool
	Reason   string
}

// SSLState is the tagged certificate outcome consumed by fusion. An unknown
// state (connection failure, timeout, non-https scheme) is never conflated
// with an invalid certificate.
type SSLState int

const (
	SSLUnknown SSLState = iota
	SSLValid
	SSLInvalid
)

// Inputs collects every signal value for one request. Fusion is a total,
// deterministic function over this struct: it never fails, including on
// all-unknown input.
type Inputs struct {
	AgeDays      int
	AgeKnown     bool
	Unregistered bool

	SSL SSLState

	Keywords []string
	Flags    []string

	MLProbability float64
	MLKnown       bool

	// CVAttempted is set on image analysis; CVKnown only when the provider
	// produced a probability. When CVAttempted is false the visual term is
	// excluded from the formula entirely, not zero-filled.
	CVAttempted   bool
	CVKnown       bool
	CVProbability float64
	CVNote        string
}

// Result is the fused verdict.
type Result struct {
	Score    int
	URLScore int
	Level    string
	Color    string
	Reasons  []string
	Signals  []Signal
}

// Risk levels and their verdict colors.
const (
	LevelSafe       = "SAFE"
	LevelSuspicious = "SUSPICIOUS"
	LevelDangerous  = "DANGEROUS"
)

func levelFor(score int, w Weights) (string, string) {
	switch {
	case score <= w.SafeMax:
		return LevelSafe, "green"
	case score <= w.SuspiciousMax:
		return LevelSuspicious, "yellow"
	default:
		return LevelDangerous, "red"
	}
}
