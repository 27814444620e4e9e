package occupancy

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/parcel"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

// ClassifyParcel labels a single parcel. It reads nothing but its arguments.
func (c *Classifier) ClassifyParcel(p types.Parcel) types.ClassifiedParcel {
	corporate := IsCorporate(p.TaxpayerName)
	housing := parcel.IsHousing(p.Class)
	apartment := parcel.IsApartment(p.Class)
	res := c.Classify(p.PropertyAddress, p.TaxpayerAddress, corporate)

	return types.ClassifiedParcel{
		Parcel:                 p,
		IsCorporateOwned:       corporate,
		IsHousing:              housing,
		IsApartment:            apartment,
		IsOwnerOccupied:        res.IsOwnerOccupied,
		AddressSimilarityScore: res.SimilarityScore,
		HasTenants:             HasTenants(housing, apartment, res.IsOwnerOccupied),
	}
}

// ClassifyAll labels every parcel using up to workers goroutines. Results are
// stored by index, so the output order always matches the input order.
func (c *Classifier) ClassifyAll(ctx context.Context, parcels []types.Parcel, workers int) ([]types.ClassifiedParcel, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]types.ClassifiedParcel, len(parcels))

	// Pipeline: producer (indices) -> workers (CPU-bound classification)
	idxCh := make(chan int, 4096)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(idxCh)
		for i := range parcels {
			select {
			case idxCh <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range idxCh {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = c.ClassifyParcel(parcels[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
