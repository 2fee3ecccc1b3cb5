package matching

import (
	"fmt"
	"strings"
)

// Score is a partial confidence with the reason that produced it.
type Score struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// CoreSimilarity scores how likely two core SKUs name the same product,
// from 0 to 95. Rules are tried in priority order.
func CoreSimilarity(core1, core2 string) Score {
	if core1 == "" && core2 == "" {
		return Score{bothCoresEmptyScore, "Both cores empty (attribute-only SKUs)"}
	}
	if core1 == "" || core2 == "" {
		return Score{0, "Empty Core SKU"}
	}

	len1, len2 := len([]rune(core1)), len([]rune(core2))

	if len1 < minCoreLength || len2 < minCoreLength {
		if core1 == core2 {
			return Score{shortCoreExactScore, "Exact short core match"}
		}
		dist := EditDistance(core1, core2)
		if dist <= 1 && max(len1, len2) <= 2 {
			return Score{shortCoreNearScore, fmt.Sprintf("Near exact short core (dist %d)", dist)}
		}
		return Score{0, fmt.Sprintf("Core too short for non-exact (c1:%d, c2:%d)", len1, len2)}
	}

	minLen, maxLen := min(len1, len2), max(len1, len2)
	ratio := float64(minLen) / float64(maxLen)
	if ratio < minCoreLengthRatio {
		return Score{0, fmt.Sprintf("Core length ratio too low (%.2f)", ratio)}
	}

	if core1 == core2 {
		return Score{exactCoreScore, fmt.Sprintf("Exact core match (%s)", core1)}
	}

	sim, dist := similarityRatio(core1, core2)
	pct := roundHalfUp(sim * 100)

	if sim >= highSimilarityCutoff {
		return Score{
			min(highSimilarityCap, highSimilarityBase+roundHalfUp(sim*highSimilarityScale)),
			fmt.Sprintf("High core similarity: %d%% (dist %d)", pct, dist),
		}
	}

	if len1 >= containmentMinLength && strings.Contains(core2, core1) {
		return Score{containmentScore, fmt.Sprintf("Core1 (%s) in Core2 (%s)", core1, core2)}
	}
	if len2 >= containmentMinLength && strings.Contains(core1, core2) {
		return Score{containmentScore, fmt.Sprintf("Core2 (%s) in Core1 (%s)", core2, core1)}
	}

	common := LongestCommonSubstring(core1, core2)
	commonLen := len([]rune(common))
	if float64(commonLen) >= max(2, float64(minLen)*0.5) {
		overlap := float64(commonLen) / float64(minLen)
		if overlap >= overlapMinRatio {
			return Score{
				min(overlapCap, overlapBase+roundHalfUp(overlap*overlapScale)),
				fmt.Sprintf("Strong core overlap: %s (%d%%)", common, roundHalfUp(overlap*100)),
			}
		}
	}

	if sim >= goodSimilarityCutoff {
		return Score{
			min(goodSimilarityCap, goodSimilarityBase+roundHalfUp(sim*goodSimilarityScale)),
			fmt.Sprintf("Good core similarity: %d%% (dist %d)", pct, dist),
		}
	}

	return Score{
		max(0, roundHalfUp(sim*lowSimilarityScale)),
		fmt.Sprintf("Low core similarity: %d%% (dist %d)", pct, dist),
	}
}

// PlatformOverride applies channel naming conventions and grade agreement to
// a pair of normalized SKUs. It only ever raises a score.
func PlatformOverride(mfrNormalized, platNormalized string, platform Platform) Score {
	if mfrNormalized == "" || platNormalized == "" {
		return Score{0, "Empty SKU for platform match"}
	}

	var result Score
	mfrCore := ExtractCore(mfrNormalized)
	platCore := ExtractCore(platNormalized)

	for _, rule := range overrideRules[platform] {
		if rule.matches(mfrNormalized, platNormalized, mfrCore, platCore) {
			result = Score{rule.score, rule.reason}
			break
		}
	}

	mfrGrade := DetectGrade(mfrNormalized)
	platGrade := DetectGrade(platNormalized)

	switch {
	case mfrGrade != nil && platGrade != nil && mfrGrade.Type == platGrade.Type:
		mfrBase := gradeBase(mfrNormalized, mfrGrade.Type)
		platBase := gradeBase(platNormalized, platGrade.Type)
		if mfrBase != "" && mfrBase == platBase {
			result.Score = max(result.Score, gradeSameTypeScore)
			result.Reason = joinReason(result.Reason, fmt.Sprintf("Platform B-Stock (%s) base match", mfrGrade.Type))
		}
	case mfrGrade == nil && platGrade != nil:
		platBase := gradeBase(platNormalized, platGrade.Type)
		if mfrNormalized == platBase {
			result.Score = max(result.Score, gradeNewVsBStockScore)
			result.Reason = joinReason(result.Reason, fmt.Sprintf("Platform B-Stock (%s) matches new MFR SKU base", platGrade.Type))
		}
	}

	return result
}

func joinReason(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "; " + addition
}
