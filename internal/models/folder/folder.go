package folder

import (
	"fmt"
	"math/rand/v2"
)

type Folder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type Patch struct {
	Name  *string
	Color *string
}

func (p Patch) Apply(f Folder) Folder {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	return f
}

// RandomColor - случайный цвет вида #rrggbb
func RandomColor(rng *rand.Rand) string {
	var n uint32
	if rng == nil {
		n = rand.Uint32N(0x1000000)
	} else {
		n = rng.Uint32N(0x1000000)
	}
	return fmt.Sprintf("#%06x", n)
}
