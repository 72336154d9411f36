package designer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerService_PaintOrder(t *testing.T) {
	doc := newInitializedDocument(t, DimensionStandard)
	layers := NewLayerService(doc)

	order := layers.PaintOrder()
	require.Len(t, order, 4)
	assert.Equal(t, LayerKindGuide, order[0].Kind)
	assert.Equal(t, LayerKindGuide, order[1].Kind)
	assert.Equal(t, doc.ElementIDs()[0], order[2].ElementID)
	assert.Equal(t, doc.ElementIDs()[1], order[3].ElementID)

	require.NoError(t, doc.SetBackground(ImageStyle{Source: uploadRef("bg"), Scale: 2, NaturalWidth: 99, NaturalHeight: 135}))
	order = layers.PaintOrder()
	require.Len(t, order, 5)
	assert.Equal(t, LayerKindBackground, order[0].Kind)
	assert.Equal(t, LayerKindGuide, order[1].Kind)
}

func TestLayerService_GuidesStayBeneathAfterReorder(t *testing.T) {
	doc := newInitializedDocument(t, DimensionStandard)
	layers := NewLayerService(doc)
	ids := doc.ElementIDs()

	moved, err := layers.SendBackward(ids[1])
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = layers.SendBackward(ids[1])
	require.NoError(t, err)
	assert.False(t, moved)

	order := layers.PaintOrder()
	assert.Equal(t, LayerKindGuide, order[0].Kind)
	assert.Equal(t, LayerKindGuide, order[1].Kind)
	assert.Equal(t, ids[1], order[2].ElementID)

	moved, err = layers.BringForward(ids[1])
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, ids, doc.ElementIDs())
}

func TestLayerService_GuidesCannotBeReordered(t *testing.T) {
	doc := newInitializedDocument(t, DimensionStandard)
	_, err := NewLayerService(doc).Reorder(string(GuideVertical), DirectionForward)
	assert.ErrorIs(t, err, ErrElementNotFound)
}
