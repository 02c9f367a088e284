package psd_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/psdkit/pkg/psd"
	"github.com/joshuapare/psdkit/pkg/types"
)

func TestWalk(t *testing.T) {
	info := extract(t, checklistDoc())

	var visited []string
	var depths []int
	err := psd.Walk(info, func(l *types.Layer, depth int) error {
		visited = append(visited, l.Name)
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"Background",
		"other", "darken", "lockTrans", "invisible",
		"closed", "layer2",
		"Invisible", "layer",
		"colors", "colors", "blue", "Insider", "cross",
	}, visited)
	require.Equal(t, []int{0, 0, 1, 1, 1, 0, 1, 0, 1, 0, 1, 1, 1, 2}, depths)
}

func TestWalk_SkipChildrenAndStop(t *testing.T) {
	info := extract(t, checklistDoc())

	var visited []string
	err := psd.Walk(info, func(l *types.Layer, depth int) error {
		visited = append(visited, l.Name)
		if l.IsFolder() {
			return psd.SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Background", "other", "closed", "Invisible", "colors"}, visited)

	stop := errors.New("stop")
	count := 0
	err = psd.Walk(info, func(l *types.Layer, depth int) error {
		count++
		if l.Name == "lockTrans" {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 4, count)
}

func TestTreeHelpers(t *testing.T) {
	info := extract(t, checklistDoc())

	require.Nil(t, psd.ParentOf(info, 0), "Background is top-level")
	require.Nil(t, psd.ParentOf(info, -1))
	require.Nil(t, psd.ParentOf(info, len(info.Layers)))
	require.Empty(t, psd.FindByName(info, "missing"))
	require.Len(t, psd.FindByName(info, "colors"), 2)
	require.Equal(t, "Background", psd.Path(info, 0))
	require.Equal(t, "", psd.Path(info, 99))

	for _, i := range psd.Leaves(info) {
		require.False(t, info.Layers[i].IsFolder())
	}
	require.Len(t, psd.Leaves(info), 9)
}
