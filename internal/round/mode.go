package round

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vancomm/sweeper/internal/mines"
)

var (
	ErrUnknownMode = errors.New("unknown mode")
	ErrInvalidMode = errors.New("invalid mode")
	ErrInvalidSize = errors.New("size not allowed in this mode")
)

// Mode carries the grid sizes a product flavour plays with. A round never
// starts below InitialSize and never grows beyond MaxSize.
type Mode struct {
	Name        string
	InitialSize int
	MaxSize     int
}

var (
	Desktop = Mode{Name: "desktop", InitialSize: 5, MaxSize: 20}
	Mobile  = Mode{Name: "mobile", InitialSize: 3, MaxSize: 8}
)

func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Desktop.Name:
		return Desktop, nil
	case Mobile.Name:
		return Mobile, nil
	default:
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

func (m Mode) Validate() error {
	if m.InitialSize < mines.MinSize || m.MaxSize > mines.MaxSize ||
		m.InitialSize > m.MaxSize {
		return fmt.Errorf(
			"%w: %s sizes %d..%d", ErrInvalidMode, m.Name, m.InitialSize, m.MaxSize,
		)
	}
	return nil
}

func (m Mode) Allows(size int) bool {
	return m.InitialSize <= size && size <= m.MaxSize
}

func (m Mode) String() string {
	return m.Name
}
