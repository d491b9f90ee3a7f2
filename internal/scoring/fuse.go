package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Fuse combines all collected signals into the final verdict. It is a pure
// function of its inputs: identical inputs always produce the identical
// score, level and reason ordering.
func Fuse(in Inputs, w Weights) Result {
	signals := buildSignals(in, w)

	urlScore := 0.0
	for _, s := range signals {
		if s.Category != CategoryCV {
			urlScore += s.Points
		}
	}
	urlScore = clampScore(urlScore)

	final := urlScore
	if in.CVAttempted && in.CVKnown {
		final = (1-w.CVWeight)*urlScore + w.CVWeight*(in.CVProbability*100)
		final = clampScore(final)
		cvSignal := Signal{
			Name:     "cv_probability",
			Category: CategoryCV,
			Points:   final - urlScore,
			Reason:   cvReason(in.CVProbability),
		}
		signals = append(signals, cvSignal)
	}

	ordered := orderSignals(signals)

	reasons := make([]string, 0, len(ordered))
	for _, s := range ordered {
		if s.Reason != "" {
			reasons = append(reasons, s.Reason)
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "No major phishing indicators found.")
	}

	score := roundHalfUp(final)
	level, color := levelFor(score, w)

	return Result{
		Score:    score,
		URLScore: roundHalfUp(urlScore),
		Level:    level,
		Color:    color,
		Reasons:  reasons,
		Signals:  ordered,
	}
}

func buildSignals(in Inputs, w Weights) []Signal {
	var signals []Signal

	if in.MLKnown {
		signals = append(signals, Signal{
			Name:     "ml_probability",
			Category: CategoryML,
			Points:   in.MLProbability * w.MLPoints,
			Reason:   fmt.Sprintf("Phishing model probability is %.2f.", in.MLProbability),
		})
	} else {
		signals = append(signals, Signal{
			Name:     "ml_probability",
			Category: CategoryML,
			Points:   w.MLUnknownPoints,
			Unknown:  true,
			Reason:   "Phishing probability could not be evaluated.",
		})
	}

	// Keywords and flags share one capped lexical budget so a wall of
	// near-duplicate hits cannot dominate the score.
	keywordPoints := math.Min(float64(len(in.Keywords))*w.FlagPoints, w.FlagCap)
	if len(in.Keywords) > 0 {
		signals = append(signals, Signal{
			Name:     "suspicious_keywords",
			Category: CategoryLexical,
			Points:   keywordPoints,
			Reason:   fmt.Sprintf("Suspicious terms found: %s.", strings.Join(in.Keywords, ", ")),
		})
	}
	if len(in.Flags) > 0 {
		flagPoints := math.Min(float64(len(in.Flags))*w.FlagPoints, w.FlagCap-keywordPoints)
		if flagPoints > 0 {
			signals = append(signals, Signal{
				Name:     "url_flags",
				Category: CategoryLexical,
				Points:   flagPoints,
				Reason:   fmt.Sprintf("Risky URL patterns: %s.", strings.Join(in.Flags, ", ")),
			})
		}
	}

	switch {
	case !in.AgeKnown:
		signals = append(signals, Signal{
			Name:     "domain_age",
			Category: CategoryDomainAge,
			Points:   w.AgeUnknownPoints,
			Unknown:  true,
			Reason:   "Domain age could not be determined.",
		})
	case in.AgeDays < 30:
		signals = append(signals, Signal{
			Name:     "domain_age",
			Category: CategoryDomainAge,
			Points:   w.AgeUnder30Points,
			Reason:   fmt.Sprintf("Domain is very new (%d days old).", in.AgeDays),
		})
	case in.AgeDays < 90:
		signals = append(signals, Signal{
			Name:     "domain_age",
			Category: CategoryDomainAge,
			Points:   w.AgeUnder90Points,
			Reason:   fmt.Sprintf("Domain is very new (%d days old).", in.AgeDays),
		})
	case in.AgeDays < 365:
		signals = append(signals, Signal{
			Name:     "domain_age",
			Category: CategoryDomainAge,
			Points:   w.AgeUnder365Points,
			Reason:   fmt.Sprintf("Domain is less than 1 year old (%d days).", in.AgeDays),
		})
	}

	if in.Unregistered {
		signals = append(signals, Signal{
			Name:     "whois_unregistered",
			Category: CategoryDomainAge,
			Points:   w.UnregisteredPoints,
			Reason:   "WHOIS indicates this domain may be unregistered.",
		})
	}

	switch in.SSL {
	case SSLInvalid:
		signals = append(signals, Signal{
			Name:     "ssl_certificate",
			Category: CategorySSL,
			Points:   w.SSLInvalidPoints,
			Reason:   "SSL certificate validation failed.",
		})
	case SSLUnknown:
		signals = append(signals, Signal{
			Name:     "ssl_certificate",
			Category: CategorySSL,
			Points:   w.SSLUnknownPoints,
			Unknown:  true,
			Reason:   "SSL certificate check could not be completed.",
		})
	}

	if in.CVAttempted && !in.CVKnown {
		reason := "CV model is unavailable, so it was not used in the final risk score."
		if in.CVNote != "" {
			reason = fmt.Sprintf("CV model note: %s", in.CVNote)
		}
		signals = append(signals, Signal{
			Name:     "cv_probability",
			Category: CategoryCV,
			Unknown:  true,
			Reason:   reason,
		})
	}

	return signals
}

// orderSignals sorts by absolute point contribution descending, breaking
// ties by category priority.
func orderSignals(signals []Signal) []Signal {
	ordered := append([]Signal(nil), signals...)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := math.Abs(ordered[i].Points), math.Abs(ordered[j].Points)
		if pi != pj {
			return pi > pj
		}
		return ordered[i].Category < ordered[j].Category
	})
	return ordered
}

func cvReason(probability float64) string {
	switch {
	case probability >= 0.7:
		return fmt.Sprintf("CV model indicates malicious visual pattern (%.2f).", probability)
	case probability <= 0.3:
		return fmt.Sprintf("CV model indicates benign visual pattern (%.2f).", probability)
	default:
		return fmt.Sprintf("CV model is uncertain (%.2f).", probability)
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
