package savefile

import (
	"encoding/binary"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/round"
)

func TestMain(m *testing.M) {
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	round.Log.SetLevel(logrus.WarnLevel)
	os.Exit(m.Run())
}

func newController(t *testing.T) *round.Controller {
	t.Helper()
	c, err := round.New(round.Desktop, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	return c
}

func tinySnapshot(t *testing.T) *round.Snapshot {
	t.Helper()
	g, err := mines.NewGrid(3)
	require.NoError(t, err)
	g.SetCell(0, 0, mines.Cell{State: mines.Revealed, AdjacentMines: 1})
	g.SetCell(0, 1, mines.Cell{State: mines.Flagged, AdjacentMines: 1})
	g.SetCell(1, 1, mines.Cell{HasMine: true})
	return &round.Snapshot{
		Grid:           g,
		GameTime:       1.5,
		RemainingCells: 7,
		RemainingMines: 1,
	}
}

func TestEncodedLen(t *testing.T) {
	assert.Equal(t, 4+9*9+14, EncodedLen(3))
	assert.Equal(t, 4+25*9+14, EncodedLen(5))
	assert.Equal(t, 4+900*9+14, EncodedLen(30))
}

func TestMarshalLayout(t *testing.T) {
	data, err := Marshal(tinySnapshot(t))
	require.NoError(t, err)
	require.Len(t, data, EncodedLen(3))

	assert.Equal(t, []byte{3, 0, 0, 0}, data[0:4])
	// (0,0): revealed, one adjacent mine
	assert.Equal(t, []byte{0, 1, 0, 0, 0, 1, 0, 0, 0}, data[4:13])
	// (0,1): flagged
	assert.Equal(t, []byte{0, 2, 0, 0, 0, 1, 0, 0, 0}, data[13:22])
	// (1,1) is the fifth cell in row-major order
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 0}, data[40:49])

	trailer := data[4+9*9:]
	assert.Equal(t, []byte{
		0, 0,
		0x00, 0x00, 0xc0, 0x3f,
		7, 0, 0, 0,
		1, 0, 0, 0,
	}, trailer)
}

func TestMarshalWithoutGrid(t *testing.T) {
	_, err := Marshal(nil)
	assert.ErrorIs(t, err, round.ErrNoGrid)
	_, err = Marshal(&round.Snapshot{})
	assert.ErrorIs(t, err, round.ErrNoGrid)
}

func TestRoundTrip(t *testing.T) {
	want := tinySnapshot(t)
	data, err := Marshal(want)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRoundTripPlayedRound(t *testing.T) {
	c := newController(t)
	require.NoError(t, c.StartRound(12))
	c.RevealAt(0, 0)
	c.ToggleFlagAt(5, 5)
	c.Tick(3.25)

	data, err := Marshal(c.Snapshot())
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, c.Snapshot(), got)
}

func TestUnmarshalAcceptsAnyNonzeroBool(t *testing.T) {
	data, err := Marshal(tinySnapshot(t))
	require.NoError(t, err)
	data[4+9*4] = 0xff

	s, err := Unmarshal(data)
	require.NoError(t, err)
	c, _ := s.Grid.At(1, 1)
	assert.True(t, c.HasMine)
}

func TestUnmarshalCorrupt(t *testing.T) {
	valid, err := Marshal(tinySnapshot(t))
	require.NoError(t, err)

	withSize := func(size int32) []byte {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data, uint32(size))
		return data
	}
	withState := func(state int32) []byte {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data[5:], uint32(state))
		return data
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", []byte{3, 0}},
		{"truncated", valid[:len(valid)-1]},
		{"padded", append(append([]byte(nil), valid...), 0)},
		{"size too small", withSize(2)},
		{"size too large", withSize(31)},
		{"negative size", withSize(-3)},
		{"size does not match length", withSize(4)},
		{"bad state", withState(3)},
		{"negative state", withState(-1)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Unmarshal(test.data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round.sav")

	c := newController(t)
	c.ToggleFlagAt(1, 1)
	c.Tick(2)
	require.NoError(t, Save(path, c))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, EncodedLen(c.Size()), info.Size())

	other := newController(t)
	require.NoError(t, other.StartRound(9))
	require.NoError(t, Load(path, other))
	assert.Equal(t, c.Snapshot(), other.Snapshot())
	assert.Equal(t, c.View(), other.View())
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round.sav")

	c := newController(t)
	require.NoError(t, c.StartRound(10))
	require.NoError(t, Save(path, c))
	require.NoError(t, c.StartRound(6))
	require.NoError(t, Save(path, c))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, EncodedLen(6), info.Size())
}

func TestLoadFailureKeepsRound(t *testing.T) {
	dir := t.TempDir()
	c := newController(t)
	c.ToggleFlagAt(0, 1)
	before := c.Snapshot()

	err := Load(filepath.Join(dir, "missing.sav"), c)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, before, c.Snapshot())

	garbage := filepath.Join(dir, "garbage.sav")
	require.NoError(t, os.WriteFile(garbage, []byte("not a round"), 0o644))
	err = Load(garbage, c)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, before, c.Snapshot())
}
