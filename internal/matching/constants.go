package matching

// Confidence tiers. 100 and 99 are reserved for exact raw and exact
// normalized agreement; every scored path is capped below them.
const (
	ExactRawConfidence        = 100
	ExactNormalizedConfidence = 99
	ShortExactConfidence      = 98
	MaxScoredConfidence       = 98

	// IndexHitMinConfidence is the confidence a normalized-index hit must
	// reach to skip the full catalog scan.
	IndexHitMinConfidence = 98

	// ValidThreshold and ReviewThreshold split scores into the three verdicts.
	ValidThreshold  = 85
	ReviewThreshold = 70

	// ExactTierThreshold marks the "exact" bucket in run summaries.
	ExactTierThreshold = 95
)

// Core similarity scoring.
const (
	bothCoresEmptyScore  = 5
	shortCoreExactScore  = 90
	shortCoreNearScore   = 70
	minCoreLength        = 2
	minCoreLengthRatio   = 0.45
	exactCoreScore       = 95
	highSimilarityCutoff = 0.88
	highSimilarityBase   = 65
	highSimilarityScale  = 30
	highSimilarityCap    = 90
	containmentMinLength = 3
	containmentScore     = 88
	overlapMinRatio      = 0.60
	overlapBase          = 55
	overlapScale         = 35
	overlapCap           = 85
	goodSimilarityCutoff = 0.75
	goodSimilarityBase   = 50
	goodSimilarityScale  = 35
	goodSimilarityCap    = 80
	lowSimilarityScale   = 60
)

// Attribute bonus and penalty weights.
const (
	identicalCoreBonus     = 5
	attributeMatchBonus    = 15
	attributeMismatchCost  = 10
	expectedAttributeBonus = 8
	attributePresenceCost  = 5
	minAttributeBonus      = -20
	maxAttributeBonus      = 30

	// conflictingAttributeCap keeps identical cores with a contradicting
	// grade or color out of the valid tier.
	conflictingAttributeCap = ValidThreshold - 1
)

// Short SKU handling in the validator.
const (
	shortSkuLength        = 3
	shortNearMaxLength    = 4
	shortNearBase         = 70
	shortNearStep         = 2
	shortReviewSimilarity = 0.60
	shortReviewFloor      = 50
	fullNormalizedScale   = 60
	overrideReplaceMargin = 10
	overrideDominantScore = 90
	overrideHintCeiling   = 50
	gradeSameTypeScore    = 97
	gradeNewVsBStockScore = 96
)
