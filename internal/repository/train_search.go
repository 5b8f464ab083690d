package repository

import "github.com/iliyamo/train-seat-reservation/internal/model"

// Search returns every train that stops at source and later at
// destination. Station codes match case-insensitively. Results keep the
// catalog's insertion order; they are not ranked by any schedule metric.
func (c *TrainCatalog) Search(source, destination string) []model.Train {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Train, 0)
	for _, t := range c.trains {
		if t.Serves(source, destination) {
			out = append(out, t.Clone())
		}
	}
	return out
}
