package types

// TransformRecord is an AI-generated, platform-tailored rewrite of the
// source content. Records are keyed by platform identity, not by stage ID,
// so two stages targeting the same platform share one cached transform.
type TransformRecord struct {
	Text              string `json:"text"`
	GeneratedAtMillis int64  `json:"generated_at_millis"`
	Approved          bool   `json:"approved"`
}
