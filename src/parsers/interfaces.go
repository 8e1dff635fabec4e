package parsers

import (
	"io"

	"github.com/username/tradefolio/backend/src/models"
)

// FillParser defines the interface for reading a broker execution export
// into raw fill rows. Implementations must preserve row order.
type FillParser interface {
	Parse(file io.Reader) ([]models.RawFill, error)
}
