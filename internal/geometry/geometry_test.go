package geometry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/ipcboard/internal/ipc2581"
)

const featureSet = `<IPC-2581>
  <Set net="GND">
    <Features>
      <Line startX="1.0" startY="2.0" endX="3.5" endY="2.0">
        <LineDesc lineEnd="ROUND" lineWidth="0.2"/>
      </Line>
    </Features>
    <Features>
      <Arc startX="3.5" startY="2.0" endX="5.5" endY="4.0" centerX="3.5" centerY="4.0" clockwise="TRUE" lineWidth="0.2" lineEnd="SQUARE"/>
    </Features>
    <Features>
      <Contour>
        <Polygon>
          <PolyBegin x="0" y="0"/>
          <PolyStepSegment x="4" y="0"/>
          <PolyStepCurve x="4" y="4" centerX="4" centerY="2" clockwise="true"/>
          <PolyStepSegment x="0" y="0"/>
        </Polygon>
      </Contour>
    </Features>
    <Features>
      <Location x="7.25" y="-1.5"/>
      <Circle diameter="0.8"/>
      <UnknownPrimitive foo="bar"/>
    </Features>
  </Set>
</IPC-2581>`

func parseSet(t *testing.T, input string) []*ipc2581.Node {
	t.Helper()
	doc, err := ipc2581.Parse(strings.NewReader(input))
	require.NoError(t, err)
	set := doc.Root.Find("Set")
	require.NotNil(t, set)
	return set.ChildrenOf("Features")
}

func TestNormalize_FeatureKinds(t *testing.T) {
	features, err := Normalize(parseSet(t, featureSet))
	require.NoError(t, err)
	require.Len(t, features, 4)

	line := features[0]
	assert.Equal(t, TypeLine, line.Type)
	assert.Equal(t, 1.0, line.X)
	assert.Equal(t, 2.0, line.Y)
	require.NotNil(t, line.Segment)
	assert.Equal(t, 3.5, line.EndX)
	assert.Nil(t, line.Curve)
	require.NotNil(t, line.Stroke)
	assert.Equal(t, "ROUND", line.LineEnd)
	assert.Equal(t, 0.2, line.LineWidth)

	arc := features[1]
	assert.Equal(t, TypeArc, arc.Type)
	require.NotNil(t, arc.Curve)
	assert.True(t, arc.Clockwise)
	assert.Equal(t, 4.0, arc.CenterY)
	require.NotNil(t, arc.Stroke, "stroke attributes on the element itself")
	assert.Equal(t, "SQUARE", arc.LineEnd)

	polygon := features[2]
	assert.Equal(t, TypePolygon, polygon.Type)
	require.Len(t, polygon.Points, 4)
	assert.Equal(t, TypePolyBegin, polygon.Points[0].Type)
	curved := polygon.Points[2]
	assert.Equal(t, TypePolyStepCurve, curved.Type)
	require.NotNil(t, curved.Curve)
	assert.Equal(t, 2.0, curved.CenterY)
	assert.True(t, curved.Clockwise)
	assert.Nil(t, polygon.Points[1].Curve)

	circle := features[3]
	assert.Equal(t, TypeCircle, circle.Type)
	assert.Equal(t, 7.25, circle.X)
	assert.Equal(t, -1.5, circle.Y)
	require.NotNil(t, circle.Diameter)
	assert.Equal(t, 0.8, *circle.Diameter)
	assert.Nil(t, circle.Stroke)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	features, err := Normalize(parseSet(t, featureSet))
	require.NoError(t, err)

	encoded, err := Encode(features)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, `[{"type":"Line","x":1,"y":2,"endX":3.5`), encoded)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, features, decoded)
}

func TestNormalizePolygon_OutlineFormat(t *testing.T) {
	doc, err := ipc2581.Parse(strings.NewReader(`<IPC-2581><Profile><Polygon>
		<PolyBegin x="0.0" y="0.0"/>
		<PolyStepCurve x="10" y="10" centerX="5" centerY="5" clockwise="FALSE"/>
	</Polygon></Profile></IPC-2581>`))
	require.NoError(t, err)

	points, err := NormalizePolygon(doc.Root.Find("Polygon"))
	require.NoError(t, err)

	encoded, err := Encode(points)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"PolyBegin","x":0,"y":0},
		{"type":"PolyStepCurve","x":10,"y":10,"centerX":5,"centerY":5,"clockwise":false}
	]`, encoded)

	none, err := NormalizePolygon(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestNormalize_Defaults(t *testing.T) {
	features, err := Normalize(parseSet(t, `<IPC-2581><Set><Features>
		<Line endX="2"/>
		<Circle x="1"/>
	</Features></Set></IPC-2581>`))
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, 0.0, features[0].X)
	assert.Equal(t, 2.0, features[0].EndX)
	assert.Nil(t, features[0].Stroke)
	assert.Equal(t, 0.0, *features[1].Diameter)
}

func TestNormalize_InvalidNumber(t *testing.T) {
	_, err := Normalize(parseSet(t, `<IPC-2581><Set><Features>
		<Line startX="1,5"/>
	</Features></Set></IPC-2581>`))
	assert.Error(t, err)
}

func TestEncodeDecode_Empty(t *testing.T) {
	encoded, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", encoded)

	decoded, err := Decode("")
	require.NoError(t, err)
	assert.Empty(t, decoded)

	_, err = Decode("{not json")
	assert.Error(t, err)
}
