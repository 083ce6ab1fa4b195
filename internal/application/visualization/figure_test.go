package visualization

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/domain/molecule"
)

var threeRows = molecule.Table{
	{SMILES: "CCO", LogP: -0.0014, SAScore: 1.9},
	{SMILES: "c1ccccc1", LogP: 1.6866, SAScore: 1.0},
	{SMILES: "C(=O)O", LogP: -0.1, SAScore: 3.1},
}

func TestBuildFigure_OnePointPerRecordInOrder(t *testing.T) {
	fig := BuildFigure(threeRows)
	require.Len(t, fig.Data, 1)
	tr := fig.Data[0]
	assert.Equal(t, []float64{-0.0014, 1.6866, -0.1}, tr.X)
	assert.Equal(t, []float64{1.9, 1.0, 3.1}, tr.Y)
	assert.Equal(t, []string{"CCO", "c1ccccc1", "C(=O)O"}, tr.CustomData)
}

func TestBuildFigure_AxisTitles(t *testing.T) {
	fig := BuildFigure(threeRows)
	assert.Equal(t, "clogP", fig.Layout.XAxis.Title.Text)
	assert.Equal(t, "Synthetic accessibility score", fig.Layout.YAxis.Title.Text)
}

func TestBuildFigure_JSONDisablesBuiltinHover(t *testing.T) {
	raw, err := json.Marshal(BuildFigure(threeRows))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	trace := generic["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "none", trace["hoverinfo"])
	v, present := trace["hovertemplate"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, "markers", trace["mode"])
}

func TestBuildFigure_EmptyTable(t *testing.T) {
	fig := BuildFigure(nil)
	assert.Empty(t, fig.Data[0].X)
	assert.NotNil(t, fig.Data[0].X)
}
