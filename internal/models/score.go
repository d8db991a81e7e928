package models

// ScoreBucket groups current scores for map styling and filtering.
type ScoreBucket string

const (
	BucketExcellent ScoreBucket = "0-5"
	BucketGood      ScoreBucket = "6-10"
	BucketAverage   ScoreBucket = "11-15"
	BucketPoor      ScoreBucket = "16-20"
	BucketBad       ScoreBucket = "21+"
	BucketUnknown   ScoreBucket = "unknown"
)

// ScoreBuckets lists every bucket in display order.
var ScoreBuckets = []ScoreBucket{
	BucketExcellent,
	BucketGood,
	BucketAverage,
	BucketPoor,
	BucketBad,
	BucketUnknown,
}

func BucketFor(score int) ScoreBucket {
	switch {
	case score <= 5:
		return BucketExcellent
	case score <= 10:
		return BucketGood
	case score <= 15:
		return BucketAverage
	case score <= 20:
		return BucketPoor
	default:
		return BucketBad
	}
}

// Bucket is BucketUnknown for ungraded records, never BucketBad.
func (r *Restaurant) Bucket() ScoreBucket {
	score, ok := r.CurrentScore()
	if !ok {
		return BucketUnknown
	}
	return BucketFor(score)
}
