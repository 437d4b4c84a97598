package generator_test

import (
	"testing"

	"github.com/Doridian/synthDNS/handler/generator"
	"github.com/Doridian/synthDNS/zone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoversAllKinds(t *testing.T) {
	zones, err := zone.New("example.com.")
	require.NoError(t, err)

	gens, err := generator.New(zones, generator.Config{CidrCacheSize: 8})
	require.NoError(t, err)

	names := map[zone.Kind]string{
		zone.Root:    "apex",
		zone.Counter: "counter",
		zone.MyIP:    "myip",
		zone.Coin:    "coin",
		zone.Dice:    "dice",
		zone.CIDR:    "cidr",
		zone.Time:    "epoch",
	}
	for _, k := range zone.Kinds() {
		gen := gens[k]
		require.NotNil(t, gen, k.String())
		assert.Equal(t, names[k], gen.GetName())
	}
}
