package ledger

import (
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// DefaultAgingBounds límites por defecto (días).
var DefaultAgingBounds = []int{30, 60, 90, 180}

// AgingBucket rango cerrado [From, To] en días; To < 0 indica rango abierto.
type AgingBucket struct {
	Label string
	From  int
	To    int
}

// BuildAgingBuckets arma los rangos 0-b1, b1+1-b2, ..., >bn a partir de límites crecientes.
func BuildAgingBuckets(bounds []int) ([]AgingBucket, error) {
	if len(bounds) == 0 {
		bounds = DefaultAgingBounds
	}
	if !sort.IntsAreSorted(bounds) {
		return nil, domain.Invalid("límites de antigüedad deben ser crecientes")
	}
	buckets := make([]AgingBucket, 0, len(bounds)+1)
	from := 0
	for i, b := range bounds {
		if b <= 0 || (i > 0 && b == bounds[i-1]) {
			return nil, domain.Invalid("límite de antigüedad inválido %d", b)
		}
		buckets = append(buckets, AgingBucket{Label: fmt.Sprintf("%d-%d", from, b), From: from, To: b})
		from = b + 1
	}
	last := bounds[len(bounds)-1]
	buckets = append(buckets, AgingBucket{Label: fmt.Sprintf(">%d", last), From: last + 1, To: -1})
	return buckets, nil
}

// BucketFor devuelve el índice del rango que contiene days.
func BucketFor(buckets []AgingBucket, days int) int {
	if days < 0 {
		days = 0
	}
	for i, b := range buckets {
		if b.To < 0 || days <= b.To {
			return i
		}
	}
	return len(buckets) - 1
}
