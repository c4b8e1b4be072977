package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoardSizeLimits(t *testing.T) {
	for _, size := range []int{4, 26, 0, -1} {
		_, err := NewBoard(size)
		assert.ErrorIs(t, err, ErrBadRequest, "size %d", size)
	}
	for _, size := range []int{5, 15, 25} {
		b, err := NewBoard(size)
		require.NoError(t, err)
		assert.Equal(t, size, b.Size())
		assert.Zero(t, b.Stones())
		assert.False(t, b.IsFull())
	}
}

func TestPlaceIsCopyOnWrite(t *testing.T) {
	b, err := NewBoard(5)
	require.NoError(t, err)

	next, err := b.Place(2, 3, Black)
	require.NoError(t, err)

	assert.Equal(t, Empty, b.At(2, 3), "original board must not change")
	assert.Equal(t, Black, next.At(2, 3))
	assert.Equal(t, 1, next.Stones())
}

func TestPlaceErrors(t *testing.T) {
	b, err := NewBoard(5)
	require.NoError(t, err)
	b, err = b.Place(0, 0, White)
	require.NoError(t, err)

	_, err = b.Place(0, 0, Black)
	assert.ErrorIs(t, err, ErrCellOccupied)

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		_, err = b.Place(p[0], p[1], Black)
		assert.ErrorIs(t, err, ErrOutOfBounds, "point %v", p)
	}

	for _, p := range []Player{Empty, Player(7)} {
		_, err = b.Place(1, 1, p)
		assert.ErrorIs(t, err, ErrBadRequest, "player %d", p)
	}
	assert.Equal(t, 1, b.Stones())
}

func TestIsFull(t *testing.T) {
	b, err := NewBoard(5)
	require.NoError(t, err)
	player := Black
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.False(t, b.IsFull())
			b, err = b.Place(x, y, player)
			require.NoError(t, err)
			player = player.Other()
		}
	}
	assert.True(t, b.IsFull())
}

func TestBoardJSONRoundTrip(t *testing.T) {
	b, err := NewBoard(5)
	require.NoError(t, err)
	b, _ = b.Place(1, 0, Black)
	b, _ = b.Place(4, 4, White)

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded Board
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, b.Equal(decoded))
	assert.Equal(t, Black, decoded.At(1, 0))
}

func TestBoardUnmarshalRejectsRaggedRows(t *testing.T) {
	var b Board
	err := json.Unmarshal([]byte(`[["","","","",""],[""],["","","","",""],["","","","",""],["","","","",""]]`), &b)
	assert.ErrorIs(t, err, ErrBadRequest)
}
