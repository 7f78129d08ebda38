// README: Pricing service quotes the flat rescue fee.
package pricing

import (
	"context"
	"fmt"
	"math"

	"supportcarr/internal/types"
)

const DefaultFlatFeeCents int64 = 5000

type Service struct {
	flatFee types.Money
}

func NewService(flatFeeCents int64) *Service {
	return &Service{flatFee: types.USD(flatFeeCents)}
}

// Quote returns the flat fee. Distance only has to be a real, non-negative
// number; it does not change the price.
func (s *Service) Quote(_ context.Context, distanceMiles float64) (types.Money, error) {
	if math.IsNaN(distanceMiles) || math.IsInf(distanceMiles, 0) || distanceMiles < 0 {
		return types.Money{}, fmt.Errorf("pricing: invalid distance %v", distanceMiles)
	}
	return s.flatFee, nil
}
