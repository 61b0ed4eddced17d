package pipeline

import (
	"github.com/couchcryptid/traffic-cams-service/internal/domain"
)

// RecordTransformer implements Transformer with the domain normalizers under
// a fixed coordinate policy.
type RecordTransformer struct {
	policy domain.CoordinatePolicy
}

// NewTransformer creates a RecordTransformer applying policy to every source.
func NewTransformer(policy domain.CoordinatePolicy) *RecordTransformer {
	return &RecordTransformer{policy: policy}
}

func (t *RecordTransformer) Transform(src domain.Source, raws []domain.RawRecord) (domain.Result, error) {
	return domain.Normalize(src, raws, t.policy)
}
