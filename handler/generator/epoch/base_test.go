package epoch_test

import (
	"testing"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/handler/generator/epoch"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runEpochQuery(gen *epoch.Generator, name string) ([]dns.RR, int, error) {
	return gen.HandleQuestion(&handler.Request{
		Question: &dns.Question{
			Name:   name,
			Qtype:  dns.TypeTXT,
			Qclass: dns.ClassINET,
		},
		Count: 1,
	})
}

func TestEpochAnswer(t *testing.T) {
	gen := epoch.New("time.example.com")

	for _, name := range []string{"epoch.0.time.example.com.", "EPOCH.0.Time.Example.COM."} {
		rr, rcode, err := runEpochQuery(gen, name)
		require.NoError(t, err, name)
		assert.Equal(t, dns.RcodeSuccess, rcode)
		require.Len(t, rr, 1)

		txt, ok := rr[0].(*dns.TXT)
		require.True(t, ok)
		assert.Equal(t, []string{"1970-01-01 00:00:00"}, txt.Txt)
		assert.Equal(t, name, txt.Hdr.Name)
		assert.Equal(t, uint32(60), txt.Hdr.Ttl)
	}
}

func TestEpochUsesConfiguredZone(t *testing.T) {
	gen := epoch.New("time.example.org.")

	_, _, err := runEpochQuery(gen, "epoch.0.time.example.org.")
	require.NoError(t, err)

	_, _, err = runEpochQuery(gen, "epoch.0.time.example.com.")
	assert.ErrorIs(t, err, handler.ErrInvalidEpochQuery)
}

func TestEpochInvalid(t *testing.T) {
	gen := epoch.New("time.example.com.")

	for _, name := range []string{
		"time.example.com.",
		"epoch.time.example.com.",
		"0.time.example.com.",
		"stamp.0.time.example.com.",
		"x.epoch.0.time.example.com.",
		"epoch.-1.time.example.com.",
		"epoch.abc.time.example.com.",
		"epoch.99999999999999999999.time.example.com.",
	} {
		rr, _, err := runEpochQuery(gen, name)
		assert.ErrorIs(t, err, handler.ErrInvalidEpochQuery, name)
		assert.Empty(t, rr, name)
	}
}

func TestEpochName(t *testing.T) {
	assert.Equal(t, "epoch", epoch.New("time.example.com.").GetName())
}
