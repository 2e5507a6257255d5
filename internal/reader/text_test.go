package reader

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/router"
)

const sampleText = `10
Stop Tolstopaltsevo: 55.611087, 37.20829, 3900m to Marushkino
Stop Marushkino: 55.595884, 37.209755, 9900m to Rasskazovka
Bus 256: Biryulyovo Zapadnoye > Biryusinka > Universam > Biryulyovo Tovarnaya > Biryulyovo Passazhirskaya > Biryulyovo Zapadnoye
Bus 750: Tolstopaltsevo - Marushkino - Rasskazovka
Stop Rasskazovka: 55.632761, 37.333324
Stop Biryulyovo Zapadnoye: 55.574371, 37.6517, 7500m to Biryusinka, 1800m to Biryusinka, 2400m to Universam
Stop Biryusinka: 55.581065, 37.64839, 750m to Universam
Stop Universam: 55.587655, 37.645687, 900m to Biryulyovo Tovarnaya
Stop Biryulyovo Tovarnaya: 55.592028, 37.653656, 1300m to Biryulyovo Passazhirskaya
Stop Biryulyovo Passazhirskaya: 55.580999, 37.659164, 1200m to Biryulyovo Zapadnoye
5
Bus 256
Bus 750
Bus 751
Stop Samara
Stop Biryusinka
`

func TestParseText(t *testing.T) {
	input, err := ParseText(strings.NewReader(sampleText))
	require.NoError(t, err)

	require.Len(t, input.BaseRequests, 10)
	assert.Equal(t, BaseRequest{
		Type:          TypeStop,
		Name:          "Tolstopaltsevo",
		Latitude:      55.611087,
		Longitude:     37.20829,
		RoadDistances: map[string]int{"Marushkino": 3900},
	}, input.BaseRequests[0])
	assert.Equal(t, BaseRequest{
		Type:        TypeBus,
		Name:        "750",
		Stops:       []string{"Tolstopaltsevo", "Marushkino", "Rasskazovka"},
		IsRoundtrip: false,
	}, input.BaseRequests[3])
	assert.True(t, input.BaseRequests[2].IsRoundtrip)
	assert.Len(t, input.BaseRequests[2].Stops, 6)
	assert.Nil(t, input.BaseRequests[4].RoadDistances)

	require.Len(t, input.StatRequests, 5)
	assert.Equal(t, StatRequest{ID: 1, Type: TypeBus, Name: "256"}, input.StatRequests[0])
	assert.Equal(t, StatRequest{ID: 4, Type: TypeStop, Name: "Samara"}, input.StatRequests[3])
}

func TestParseText_LaterDistanceWins(t *testing.T) {
	input, err := ParseText(strings.NewReader(sampleText))
	require.NoError(t, err)

	assert.Equal(t, 1800, input.BaseRequests[5].RoadDistances["Biryusinka"])
}

func TestParseText_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad count", "two\n"},
		{"short base section", "2\nStop A: 1, 2\n"},
		{"missing colon", "1\nStop A 1, 2\n0\n"},
		{"bad latitude", "1\nStop A: north, 2\n0\n"},
		{"missing longitude", "1\nStop A: 1\n0\n"},
		{"bad distance", "1\nStop A: 1, 2, far to B\n0\n"},
		{"unknown base type", "1\nTram 1: A - B\n0\n"},
		{"missing stat section", "0\n"},
		{"unknown stat type", "0\n1\nRoute A\n"},
		{"stat without name", "0\n1\nBus\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseText_SkipsBlankLines(t *testing.T) {
	input, err := ParseText(strings.NewReader("\n1\n\nStop A: 1.5, 2.5\n\n1\nStop A\n"))
	require.NoError(t, err)

	assert.Len(t, input.BaseRequests, 1)
	assert.Len(t, input.StatRequests, 1)
}

func TestTextRoundTrip(t *testing.T) {
	input, err := ParseText(strings.NewReader(sampleText))
	require.NoError(t, err)

	cat := catalogue.New()
	require.NoError(t, ApplyBaseRequests(cat, input.BaseRequests))
	h := catalogueHandler{cat: cat, router: router.Build(cat, router.Settings{BusWaitTime: 6, BusVelocity: 40})}

	responses, err := Process(context.Background(), h, input.StatRequests, 2)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteText(&out, input.StatRequests, responses))

	want := strings.Join([]string{
		"Bus 256: 6 stops on route, 5 unique stops, 5950 route length, 1.36124 curvature",
		"Bus 750: 5 stops on route, 3 unique stops, 27600 route length, 1.31808 curvature",
		"Bus 751: not found",
		"Stop Samara: not found",
		"Stop Biryusinka: buses 256",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestFormatText_StopWithoutBuses(t *testing.T) {
	req := StatRequest{Type: TypeStop, Name: "Prazhskaya"}

	assert.Equal(t, "Stop Prazhskaya: no buses", FormatText(req, StopResponse{Buses: []string{}}))
	assert.Equal(t, "Stop Prazhskaya: buses 14 22k", FormatText(req, StopResponse{Buses: []string{"14", "22k"}}))
	assert.Equal(t, "Stop Prazhskaya: not found", FormatText(req, nil))
}
