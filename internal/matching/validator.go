package matching

import (
	"fmt"
	"strings"
)

// Verdict is the three-way outcome of validating a candidate pair.
type Verdict string

const (
	VerdictValid       Verdict = "VALID"
	VerdictNeedsReview Verdict = "NEEDS_REVIEW"
	VerdictInvalid     Verdict = "INVALID"
)

// Validation is the scored judgement of a manufacturer/platform SKU pair.
type Validation struct {
	Verdict    Verdict `json:"verdict"`
	Confidence int     `json:"confidence"`
	Reason     string  `json:"reason"`
}

// attributeComparison accumulates the grade and color agreement signals.
type attributeComparison struct {
	bonus    int
	reason   strings.Builder
	differ   bool // cores identical but an attribute differs
	conflict bool // both sides carry the attribute and disagree
}

// Validate scores a manufacturer SKU against a platform SKU.
func Validate(mfrRaw string, mfr SkuAttributes, platRaw string, plat SkuAttributes, platform Platform) Validation {
	if mfrRaw == "" || platRaw == "" {
		return Validation{VerdictInvalid, 0, "Empty SKU provided to validateMatch"}
	}

	if strings.ToUpper(mfrRaw) == strings.ToUpper(platRaw) {
		return Validation{VerdictValid, ExactRawConfidence, "Exact raw match (case-insensitive)"}
	}

	mfrN, platN := mfr.NormalizedSKU, plat.NormalizedSKU
	if mfrN != "" && mfrN == platN {
		return Validation{VerdictValid, ExactNormalizedConfidence, fmt.Sprintf("Exact normalized match (%s)", mfrN)}
	}

	if (mfrN != "" && len(mfrN) < shortSkuLength) || (platN != "" && len(platN) < shortSkuLength) {
		return validateShort(mfrN, platN)
	}

	override := PlatformOverride(mfrN, platN, platform)
	coreSim := CoreSimilarity(mfr.CoreSKU, plat.CoreSKU)
	attrs := compareAttributes(mfr, plat)

	var score int
	var reason strings.Builder
	if coreSim.Score > 0 {
		fmt.Fprintf(&reason, "CoreSim(%d%%): %s. ", coreSim.Score, coreSim.Reason)
		score = coreSim.Score
	} else {
		sim, _ := similarityRatio(mfrN, platN)
		fmt.Fprintf(&reason, "Low CoreSim. FullNormSim(%d%%). ", roundHalfUp(sim*100))
		score = roundHalfUp(sim * fullNormalizedScale)
	}
	if attrs.reason.Len() > 0 {
		fmt.Fprintf(&reason, "Attr: %s(Bonus %d). ", attrs.reason.String(), attrs.bonus)
	}
	score += attrs.bonus

	if attrs.conflict && score > conflictingAttributeCap {
		score = conflictingAttributeCap
		reason.WriteString("Identical cores with conflicting attributes. ")
	}
	if attrs.differ && score > ReviewThreshold {
		reason.WriteString("Cores matched but attributes differed. ")
	}

	finalReason := reason.String()
	if override.Score > 0 {
		switch {
		case override.Score > score+overrideReplaceMargin ||
			(override.Score >= overrideDominantScore && score < overrideDominantScore):
			score = override.Score
			finalReason = fmt.Sprintf("Platform Specific: %s (Core/Attr: %s)", override.Reason, scoreLabel(score))
		case score < overrideHintCeiling && override.Score > score:
			score = override.Score
			finalReason = fmt.Sprintf("Platform Hint: %s (Low core/attr).", override.Reason)
		default:
			finalReason += fmt.Sprintf(" PlatformNote: %s (Score %d).", override.Reason, override.Score)
			score = max(score, override.Score)
		}
	}

	score = min(MaxScoredConfidence, max(0, score))
	return tier(score, finalReason)
}

func scoreLabel(score int) string {
	if score > 0 {
		return fmt.Sprintf("%d", score)
	}
	return "N/A"
}

func tier(score int, reason string) Validation {
	switch {
	case score >= ValidThreshold:
		return Validation{VerdictValid, score, reason}
	case score >= ReviewThreshold:
		return Validation{VerdictNeedsReview, score, "Review: " + reason}
	default:
		return Validation{VerdictInvalid, score, "Low Confidence: " + reason}
	}
}

func validateShort(mfrN, platN string) Validation {
	dist := EditDistance(mfrN, platN)
	maxLen := max(len(mfrN), len(platN))

	if dist == 0 && maxLen > 0 {
		return Validation{VerdictValid, ShortExactConfidence, fmt.Sprintf("Short exact normalized (%s)", mfrN)}
	}
	if dist <= 1 && maxLen <= shortNearMaxLength && maxLen > 0 {
		return Validation{
			VerdictValid,
			shortNearBase + (5-maxLen)*shortNearStep,
			fmt.Sprintf("Short SKU near match (dist %d, len %d)", dist, maxLen),
		}
	}

	sim := 0.0
	if maxLen > 0 {
		sim = float64(maxLen-dist) / float64(maxLen)
	}
	if sim >= shortReviewSimilarity && maxLen > 0 {
		return Validation{
			VerdictNeedsReview,
			max(shortReviewFloor, roundHalfUp(sim*fullNormalizedScale)),
			fmt.Sprintf("Short SKU, mod. similarity %d%%", roundHalfUp(sim*100)),
		}
	}
	return Validation{VerdictInvalid, 0, fmt.Sprintf("SKU too short (MfrN:%s, PlatN:%s)", mfrN, platN)}
}

func compareAttributes(mfr, plat SkuAttributes) *attributeComparison {
	cmp := &attributeComparison{}
	sameCore := mfr.CoreSKU == plat.CoreSKU

	if mfr.CoreSKU != "" && sameCore {
		cmp.bonus += identicalCoreBonus
	}

	mfrGrade, platGrade := mfr.GradeType(), plat.GradeType()
	switch {
	case mfrGrade != "" && platGrade != "":
		if mfrGrade == platGrade {
			cmp.bonus += attributeMatchBonus
			fmt.Fprintf(&cmp.reason, "B-Stock type match (%s). ", mfrGrade)
		} else {
			cmp.bonus -= attributeMismatchCost
			fmt.Fprintf(&cmp.reason, "B-Stock type mismatch (%s vs %s). ", mfrGrade, platGrade)
			cmp.markConflict(sameCore, mfr.CoreSKU)
		}
	case mfrGrade != "" || platGrade != "":
		source := fmt.Sprintf("Plat (%s)", platGrade)
		if mfrGrade != "" {
			source = fmt.Sprintf("MFR (%s)", mfrGrade)
		}
		cmp.presenceDiff("B-Stock", source, sameCore, mfr.CoreSKU)
	}

	switch {
	case mfr.Color != "" && plat.Color != "":
		if mfr.Color == plat.Color {
			cmp.bonus += attributeMatchBonus
			fmt.Fprintf(&cmp.reason, "Color match (%s). ", mfr.Color)
		} else {
			cmp.bonus -= attributeMismatchCost
			fmt.Fprintf(&cmp.reason, "Color mismatch (%s vs %s). ", mfr.Color, plat.Color)
			cmp.markConflict(sameCore, mfr.CoreSKU)
		}
	case mfr.Color != "" || plat.Color != "":
		source := fmt.Sprintf("Plat (%s)", plat.Color)
		if mfr.Color != "" {
			source = fmt.Sprintf("MFR (%s)", mfr.Color)
		}
		cmp.presenceDiff("Color", source, sameCore, mfr.CoreSKU)
	}

	cmp.bonus = max(minAttributeBonus, min(cmp.bonus, maxAttributeBonus))
	return cmp
}

func (c *attributeComparison) markConflict(sameCore bool, core string) {
	if !sameCore {
		return
	}
	c.differ = true
	if core != "" {
		c.conflict = true
	}
}

// presenceDiff handles an attribute carried by only one side. With equal
// cores this is usually a new-vs-variant listing of the same product.
func (c *attributeComparison) presenceDiff(label, source string, sameCore bool, core string) {
	if sameCore && core != "" {
		c.bonus += expectedAttributeBonus
		fmt.Fprintf(&c.reason, "Expected %s diff (%s). ", label, source)
	} else {
		c.bonus -= attributePresenceCost
		fmt.Fprintf(&c.reason, "%s presence diff (%s). ", label, source)
	}
	if sameCore {
		c.differ = true
	}
}
